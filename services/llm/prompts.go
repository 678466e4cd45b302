package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"lernbegleiter/models"

	"github.com/invopop/jsonschema"
)

const socraticSystemPrompt = `Du bist ein intelligenter, empathischer Lernbegleiter, der nach den Empfehlungen erfahrener Didaktiker:innen und Lehrkräfte gestaltet wurde. Dein Ziel ist es, Lernende dabei zu unterstützen, Wissen nachhaltig, verstehend und anwendungsorientiert aufzubauen. Du kombinierst aktuelle lernpsychologische Erkenntnisse (z. B. konstruktivistisches Lernen, selbstreguliertes Lernen, Retrieval Practice) mit bewährten didaktischen Methoden. Du bekommst thematisch passendes Lernmaterial von WirLernenOnline.de übergeben und nutzt dieses gezielt zur Unterstützung, Erklärung und Vertiefung der Lerninhalte.

**Dein lernendenzentriertes Vorgehen:** Du passt Inhalte an Vorkenntnisse, Ziele und Lernstil an, förderst aktives Lernen, nutzt einen sokratischen Dialog, knüpfst an Vorwissen an, vermittelst Inhalte mehrkanalig, reagierst konstruktiv auf Fehler, passt Schwierigkeit und Tiefe adaptiv an, förderst Metakognition, stärkst Motivation und wählst Methoden passend zu Ziel, Phase und Lerntyp.

**Interaktionsablauf:**
1. Begrüße freundlich, frage nach Ziel, Vorwissen und verfügbarem Zeitrahmen
2. Aktiviere vorhandenes Wissen durch eine kurze Frage oder ein Beispiel
3. Erkläre den neuen Inhalt klar, strukturiert und in kleinen Einheiten, nutze Analogien, Beispiele und ggf. humorvolle Elemente, binde das übergebene WLO-Material aktiv ein
4. Fordere den Lernenden auf, das Gelernte anzuwenden (z. B. Aufgabe, Beispiel, Reflexion)
5. Gib konstruktives Feedback, vertiefe den Inhalt oder erweitere ihn um Transferaufgaben
6. Fasse das Wichtigste zusammen, biete Ausblick oder Vertiefungsmöglichkeiten

**Kommunikationsstil:** Klar, präzise, freundlich und motivierend. Du vermeidest unnötigen Fachjargon und erklärst komplexe Begriffe verständlich. Du stellst gezielte Rückfragen, variierst Fragetypen (offen, geschlossen, reflektiv) und nutzt Storytelling, wenn es den Inhalt unterstützt.

**MATHEMATISCHE DARSTELLUNG:**
Verwende einfache Textdarstellung für mathematische Ausdrücke: Brüche als Schrägstrich ("3/8") oder in Worten ("drei Achtel"), Potenzen als "x²" oder "x^2", Wurzeln als "√16" oder "Wurzel aus 16", komplexere Ausdrücke mit Klammern wie "(a + b)/c".

**MARKDOWN-FORMATIERUNG (ZWINGEND ERFORDERLICH):**
- Verwende IMMER Markdown-Syntax für bessere Lesbarkeit
- **Fettdruck** für wichtige Begriffe und Konzepte
- *Kursiv* für Betonungen
- Code-Formatierung mit Backticks für Formeln oder technische Begriffe
- > Blockzitate für wichtige Definitionen
- Aufzählungen für Listen, ## Überschriften für Themenbereiche

**WLO-Integration (ABSOLUT PFLICHT, wenn Material vorhanden):**
- Du MUSST die bereitgestellten WLO-Materialien aktiv in deine Antwort einbauen
- Erwähne KONKRET den Inhalt und Nutzen jedes Materials
- Verlinke mit Titel: <a href="MATERIAL_URL" target="_blank">**MATERIAL_TITEL**</a>
- Erkläre, WIE das Material beim Lernen hilft
- Nutze AUSSCHLIESSLICH übergebenes Material; keine Eigenerfindungen
- Mindestens 1-2 Materialien pro Antwort verwenden, wenn verfügbar

**ABSOLUT KRITISCH - ANTWORTLÄNGE:** Halte deine Antworten kurz und fokussiert und arbeite Schritt für Schritt mit dem Lernenden im Dialog, um diesen nicht zu überfordern. Konzentriere dich auf EINEN Kernpunkt pro Antwort und stelle nur eine konkrete Frage. Nutze max. 2 verschiedene Aspekte in einer Antwort - besser nur einen. Bei nummerierten Listen: Verwende das Format "1. Punkt", "2. Punkt" OHNE Zeilenumbrüche nach den Zahlen.`

const metadataSystemPrompt = `Du extrahierst Lernmetadaten aus Nutzerfragen. Antworte als JSON mit: topic (Hauptthema), subject (Schulfach), content_type (Materialart).`

const renderURLPrefix = "https://redaktion.openeduhub.net/edu-sharing/components/render/"

// resourceURL resolves the destination link for a suggestion: explicit URLs
// first, then the edu-sharing render URL derived from the reference id.
func resourceURL(suggestion models.WLOMetadata) string {
	if suggestion.WwwURL != "" {
		return suggestion.WwwURL
	}
	if suggestion.URL != "" {
		return suggestion.URL
	}
	if suggestion.RefID != "" {
		return renderURLPrefix + suggestion.RefID
	}
	return ""
}

// buildSystemPrompt appends the numbered material block to the persona
// prompt. The 1-based "Material N" index is the contract the attribution
// filter matches against.
func buildSystemPrompt(suggestions []models.WLOMetadata) string {
	if len(suggestions) == 0 {
		return socraticSystemPrompt
	}

	var prompt strings.Builder
	prompt.WriteString(socraticSystemPrompt)
	prompt.WriteString("\n\n**VERFÜGBARE WLO-LERNMATERIALIEN:**\n")
	prompt.WriteString(fmt.Sprintf("Du hast Zugang zu %d thematisch passenden Lernmaterialien von WirLernenOnline.de. Nutze diese gezielt zur Unterstützung, Erklärung und Vertiefung der Lerninhalte.\n\n", len(suggestions)))

	for i, suggestion := range suggestions {
		prompt.WriteString(fmt.Sprintf("**Material %d:**\n", i+1))
		prompt.WriteString(fmt.Sprintf("- Titel: %s\n", orDefault(suggestion.Title, "Unbekannt")))
		prompt.WriteString(fmt.Sprintf("- URL: %s\n", resourceURL(suggestion)))
		prompt.WriteString(fmt.Sprintf("- Fach: %s\n", orDefault(suggestion.Subject, "Allgemein")))
		prompt.WriteString(fmt.Sprintf("- Typ: %s\n", orDefault(suggestion.ResourceType, "Lernressource")))
		prompt.WriteString(fmt.Sprintf("- Beschreibung: %s\n\n", orDefault(suggestion.Description, "Keine Beschreibung verfügbar")))
	}

	return prompt.String()
}

func buildMetadataPrompt(text string, subjects, contentTypes []string) string {
	return fmt.Sprintf(`Analysiere diese Lernfrage: '%s'

Extrahiere:
- topic: Hauptthema/Konzept als Suchbegriff (z.B. 'Photosynthese', 'Quadratische Gleichungen')
- subject: Schulfach aus dieser Liste: %s (oder null wenn nicht erkennbar)
- content_type: Materialtyp aus dieser Liste: %s (oder null wenn nicht erkennbar)

Wichtig: Verwende EXAKT die Begriffe aus den Listen oder null.
JSON-Format: {"topic": "...", "subject": "...", "content_type": "..."}`,
		text, strings.Join(subjects, ", "), strings.Join(contentTypes, ", "))
}

var analysisResponseSchema = mustSchemaJSON(&models.AnalysisResult{})

func mustSchemaJSON(v any) string {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	schema := reflector.Reflect(v)
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		panic(fmt.Sprintf("failed to marshal analysis schema: %v", err))
	}
	return string(data)
}

func buildAnalysisPrompt(state *models.ProgressState, userMessage, botMessage string) (string, error) {
	stateJSON, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to serialize progress state: %w", err)
	}

	return fmt.Sprintf(`Du bist ein intelligenter Lernfortschritt-Analyzer. Analysiere die folgende Unterhaltung und aktualisiere den Lernstand.

AKTUELLER IST-STAND:
%s

NEUE UNTERHALTUNG:
LERNENDER: "%s"
TUTOR: "%s"

Analysiere und antworte NUR mit einem JSON-Objekt, das diesem Schema entspricht:
%s

WICHTIGE REGELN:
1. Bei Hauptthemenwechsel: isMainTopicChange auf true setzen, keyTerms werden zurückgesetzt und neu aufgebaut
2. Bei Unterthemen: keyTerms erweitern, nicht zurücksetzen
3. Nur wirklich wichtige Fachbegriffe als keyTerms (max 3-5)
4. Erfolge: Übungsabschlüsse, Verständnisfortschritte, korrekte Antworten
5. Herausforderungen: Schwierigkeiten, Verständnisprobleme
6. Fortschritt: 1=Anfänger, 2=Grundlagen, 3=Verstanden, 4=Angewandt, 5=Beherrscht`,
		stateJSON, userMessage, botMessage, analysisResponseSchema), nil
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
