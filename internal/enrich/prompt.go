package enrich

import (
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/azielinski/jobradar/internal/model"
)

// The prompt is issued and answered in Polish; the model is pinned to a
// strict JSON contract so the repair pass rarely has work to do.
const (
	promptPersona = "Jesteś narzędziem do oceny dopasowania ofert pracy IT. " +
		"Zwracasz WYŁĄCZNIE poprawny JSON w UTF-8, bez markdownu i bez wyjaśniania rozumowania. " +
		"Odpowiadasz po polsku."

	promptSchema = "Wyjście - dokładnie taki JSON:\n" +
		`{ "ocena_oferty": <int 0-100>, ` +
		`"dopasowanie_kandydata": <int 0-100>, ` +
		`"techstack": ["...", "..."], ` +
		`"braki": ["...", "..."], ` +
		`"opinia": "max 5 krótkich zdań" }` + "\n" +
		"techstack: 1-20 unikalnych technologii z ogłoszenia, małymi literami; " +
		"braki: wymagania z ogłoszenia, których kandydat nie spełnia."

	promptSynonyms = "Normalizacja techstack (zapisuj małymi literami): " +
		`"azure devops pipelines|azure pipelines|ado pipelines|azure devops ci/cd"->"azure devops"; ` +
		`"qa automation|sdet|automated testing"->"test automation"; ` +
		`"http api|web api"->"rest api"; ` +
		`"hardware-in-the-loop|software-in-the-loop"->"hil/sil"; ` +
		`"python backend|python scripting"->"python"; ` +
		`"continuous integration|continuous delivery"->"ci/cd"; ` +
		`"gh actions|github actions"->"github actions"; ` +
		`"gitlab-ci|gitlab ci/cd"->"gitlab ci"; ` +
		`"k8s|kubernetes"->"kubernetes"; ` +
		`"ms azure|azure cloud"->"azure"; ` +
		`"selenium webdriver"->"selenium".`
)

// BuildMessages assembles the fixed multi-part prompt: persona, output
// schema, candidate profile, synonym normalization, scoring rubric, and
// finally the posting text. profile and expectations arrive as opaque
// configuration strings.
func BuildMessages(profile, expectations string, offer model.JobOffer) []openai.ChatCompletionMessage {
	return []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: promptPersona},
		{Role: openai.ChatMessageRoleSystem, Content: promptSchema},
		{Role: openai.ChatMessageRoleSystem, Content: profile},
		{Role: openai.ChatMessageRoleSystem, Content: promptSynonyms},
		{Role: openai.ChatMessageRoleSystem, Content: expectations},
		{
			Role:    openai.ChatMessageRoleUser,
			Content: fmt.Sprintf("Pełny tekst ogłoszenia dla %s:\n%s", offer.URL, offer.Description),
		},
	}
}
