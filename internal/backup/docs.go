package backup

import "time"

// accountingDocumentation is the static account-taxonomy block bundled
// with every backup, so an exported file is self-describing.
func accountingDocumentation(now time.Time) map[string]any {
	cuenta := func(nombre, tipo, naturaleza, nota string) map[string]any {
		c := map[string]any{"nombre": nombre, "tipo": tipo, "naturaleza": naturaleza}
		if nota != "" {
			c["nota"] = nota
		}
		return c
	}

	return map[string]any{
		"_meta": map[string]any{
			"fecha_generacion": now.Format(time.RFC3339),
			"descripcion":      "Documentación oficial de la estructura y mecánicas contables del sistema El Jardín ERP.",
		},
		"estructura_cuentas": map[string]any{
			"activos": map[string]any{
				"definicion": "Recursos controlados por la empresa como resultado de eventos pasados, de los que se esperan beneficios económicos futuros.",
				"cuentas": []map[string]any{
					cuenta("Caja Chica", "Efectivo", "Deudora", ""),
					cuenta("Bancos", "Efectivo", "Deudora", ""),
					cuenta("Inventario", "Activo Circulante", "Deudora", "Valuado mediante el método de Costo Promedio y descargado vía FIFO. Bajo el sistema de Inventario Periódico, no se descarga automáticamente en cada venta, sino mediante Tomas Físicas u operaciones de Producción."),
					cuenta("Activo Fijo", "Activo No Circulante", "Deudora", "Mobiliario, equipo, remodelaciones."),
				},
			},
			"pasivos": map[string]any{
				"definicion": "Obligaciones presentes de la empresa, surgidas de eventos pasados, al vencimiento de las cuales espera desprenderse de recursos.",
				"cuentas": []map[string]any{
					cuenta("Cuentas por Pagar", "Pasivo Circulante", "Acreedora", "Pre-configurado para futuras integraciones."),
				},
			},
			"patrimonio": map[string]any{
				"definicion": "La parte residual de los activos de la empresa, una vez deducidos todos sus pasivos.",
				"cuentas": []map[string]any{
					cuenta("Capital Inicial", "Patrimonio", "Acreedora", "Fondo de apertura al inicializar el negocio."),
					cuenta("Utilidades Retenidas / Ejercicio", "Patrimonio", "Acreedora", "Obtenido mediante: Ventas Netas - Costos - Gastos Operativos."),
				},
			},
			"resultados": map[string]any{
				"definicion": "Cuentas nominales utilizadas para determinar el estado de ganancias y pérdidas.",
				"cuentas": []map[string]any{
					cuenta("Ventas (Ingresos Totales)", "Ingreso", "Acreedora", ""),
					cuenta("Costos (Costo de Ventas / COGS)", "Egreso", "Deudora", "Bajo el sistema Periódico, este costo se registra exclusivamente a través de los ajustes por consumo o pérdida detectados en las Tomas Físicas de inventario, y no en el momento de la venta."),
					cuenta("Gastos (Operativos)", "Egreso", "Deudora", "Servicios, gastos básicos, devaluación de activos y faltantes de efectivo."),
				},
			},
		},
		"mecanicas_operativas": map[string]any{
			"ventas":                "Cuando se realiza una venta, aumenta la liquidez (Caja/Bancos) y aumentan los Ingresos (Ventas). Bajo el sistema de Inventario Periódico, la venta se trata como 100% ingreso puro en el momento; NO disminuye el inventario automáticamente ni registra Costos (COGS) hasta que se realice una Toma Física.",
			"compras_inventario":    "Al adquirir artículos de inventario, disminuye liquidez y aumenta la cuenta de Inventario. Se crea un lote con fecha y costo unitario para posterior extracción FIFO. No afecta utilidades hasta ser consumido.",
			"compras_activos":       "Al adquirir activo físico, disminuye liquidez y aumenta Activo Fijo.",
			"gastos":                "Un pago directo (Luz, Agua, etc.) desplaza liquidez a la cuenta de Gastos Operativos.",
			"produccion_ensamblaje": "Al cocinar o ensamblar, se descuentan artículos del inventario mediante FIFO para calcular el Costo Exacto Consumido. Automáticamente se crea un nuevo Lote del producto terminado en Inventario equivalente a ese costo exacto, transfiriendo valor internamente sin impactar liquidez ni resultados.",
			"auditorias_y_ajustes": map[string]any{
				"caja_bancos":   "Diferencias de efectivo físico vs lógico. Los faltantes se envían inmediatamente al Gasto. Los sobrantes sorpresivos se ajustan y acreditan como Ingresos adicionales.",
				"inventario":    "Toma Física (conteo de existencias). Es el corazón del Sistema Periódico: al reportar que faltan unidades (ya sea porque se vendieron o se dañaron), el sistema extrae esos lotes usando precio FIFO y envía ese valor acumulado a la cuenta de Costos (COGS), cuadrando finalmente la Ecuación Contable y ajustando la Ganancia Neta.",
				"activos_fijos": "Una pérdida de valor del equipo (depreciación) ajusta el monto a la baja y se traslada al informe de Gastos Operativos.",
			},
		},
	}
}
