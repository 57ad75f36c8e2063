package strategy

import (
	"fmt"
	"strings"
)

// SystemPrompt frames the model as a commercial analyst.
const SystemPrompt = "Eres un analista comercial senior de Mercado Libre. " +
	"Tu tarea es diseñar estrategias comerciales claras, accionables " +
	"y alineadas a objetivos de negocio."

const userPromptTemplate = `Eres un analista comercial senior de Mercado Libre.

Perfil del seller:
- seller_nickname: %s
- seller_size: %s
- performance_level: %s

Playbook de referencia para este segmento:
- Objetivo sugerido: %s
- Líneas sugeridas: %s

Con esta información, genera una estrategia comercial personalizada con el siguiente formato:

1) Objetivo principal (1 párrafo).
2) 3–5 acciones concretas para el equipo comercial, separadas por viñetas.
3) 2–3 KPIs clave para evaluar el impacto de la estrategia.

La respuesta debe ser clara, accionable y escrita en un lenguaje orientado a negocio.
`

// BuildPrompt renders the user prompt for one seller from its segment play.
func BuildPrompt(t Target, playbook *Playbook) string {
	play, _ := playbook.Lookup(t.SellerSize, t.PerformanceLevel)
	return fmt.Sprintf(userPromptTemplate,
		t.SellerID, t.SellerSize, t.PerformanceLevel,
		play.Objective, strings.Join(play.Lines, ", "))
}
