package strategy

import "seller-segment-lab/internal/domain"

// Play is the reference objective and action lines for one segment.
type Play struct {
	Objective string
	Lines     []string
}

// PlaybookKey identifies a segment.
type PlaybookKey struct {
	SellerSize       string
	PerformanceLevel string
}

// Playbook maps segments to plays. Segments without an entry use Default.
type Playbook struct {
	Plays   map[PlaybookKey]Play
	Default Play
}

// Lookup returns the play for a segment.
// ok is false when the segment is not enumerated and Default was returned.
func (p *Playbook) Lookup(size, level string) (play Play, ok bool) {
	play, ok = p.Plays[PlaybookKey{SellerSize: size, PerformanceLevel: level}]
	if !ok {
		return p.Default, false
	}
	return play, true
}

// DefaultPlaybook returns the commercial playbook.
func DefaultPlaybook() *Playbook {
	return &Playbook{
		Plays: map[PlaybookKey]Play{
			{domain.SizeKeyAccount, domain.LevelDiamond}: {
				Objective: "Consolidar y expandir la relación con un socio estratégico clave.",
				Lines: []string{
					"Definir un plan anual de co-marketing con foco en eventos pico.",
					"Negociar beneficios exclusivos (cuotas, bundles, lanzamientos anticipados).",
					"Explorar oportunidades de exclusividad en categorías clave.",
				},
			},
			{domain.SizeKeyAccount, domain.LevelTop}: {
				Objective: "Mantener el alto rendimiento y capturar upside adicional.",
				Lines: []string{
					"Refinar la calendarización de campañas comerciales y eventos.",
					"Profundizar surtido en SKUs de mayor conversión.",
					"Optimizar inversión en visibilidad según rentabilidad por categoría.",
				},
			},
			{domain.SizeKeyAccount, domain.LevelExpected}: {
				Objective: "Cerrar brechas de ejecución para llevar al seller a un nivel superior.",
				Lines: []string{
					"Revisar inventarios y disponibilidad en momentos pico.",
					"Alinear estrategia de precios y promociones con el mercado.",
					"Definir un roadmap de mejoras conjuntas en catálogo y contenido.",
				},
			},
			{domain.SizeKeyAccount, domain.LevelLow}: {
				Objective: "Reducir riesgo y decidir si se reactiva o se desprioriza al seller.",
				Lines: []string{
					"Realizar un diagnóstico claro de causas de bajo desempeño.",
					"Acordar un plan mínimo de remediación con hitos y plazos.",
					"Revisar si se mantiene, reduce o elimina inversión comercial.",
				},
			},
			{domain.SizeCoreSeller, domain.LevelTop}: {
				Objective: "Acelerar el crecimiento de un seller estable con buen potencial.",
				Lines: []string{
					"Identificar categorías donde pueda escalar presencia.",
					"Explorar acciones de co-marketing a escala media.",
					"Definir incentivos por crecimiento de volumen y calidad.",
				},
			},
			{domain.SizeLocalHero, domain.LevelTop}: {
				Objective: "Escalar un nicho rentable y fortalecer su liderazgo local.",
				Lines: []string{
					"Aumentar visibilidad en su nicho principal.",
					"Expandir catálogo alrededor de sus best sellers.",
					"Explorar cross-sell hacia categorías afines.",
				},
			},
			{domain.SizeLongTail, domain.LevelTop}: {
				Objective: "Convertir un seller pequeño pero sólido en un 'Emerging Star'.",
				Lines: []string{
					"Acompañar la expansión de catálogo de forma controlada.",
					"Mejorar contenido para aumentar conversión.",
					"Testear campañas de bajo costo para validar potencial.",
				},
			},
			{domain.SizeLongTail, domain.LevelLow}: {
				Objective: "Minimizar esfuerzo operativo en sellers con bajo impacto.",
				Lines: []string{
					"Ofrecer recomendaciones básicas y autoservicio.",
					"Limitar inversión manual del equipo comercial.",
					"Monitorear; solo re-escalar si se observa mejora clara.",
				},
			},
		},
		Default: Play{
			Objective: "Definir una estrategia comercial básica acorde al tamaño y nivel de performance del seller.",
			Lines: []string{
				"Revisar catálogo y ajustar oferta a la demanda.",
				"Optimizar precios y promociones según su contexto competitivo.",
				"Definir acciones mínimas de mejora en servicio/logística.",
			},
		},
	}
}
