package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mwiater/dinomuseum/internal/appconfig"
	"github.com/mwiater/dinomuseum/internal/museumapi"
	"github.com/mwiater/dinomuseum/internal/providers"
)

// MuseumBackend forwards questions to the museum backend's chat endpoint.
type MuseumBackend struct {
	Client *museumapi.Client
}

// Ask implements Backend.
func (b MuseumBackend) Ask(ctx context.Context, dinoContext, question string) (string, error) {
	return b.Client.Chat(ctx, dinoContext, question)
}

// OllamaBackend talks to an Ollama host directly, with the dinosaur persona as
// the system prompt.
type OllamaBackend struct {
	Provider providers.ChatProvider
	Host     appconfig.OllamaHost
}

// Ask implements Backend.
func (b OllamaBackend) Ask(ctx context.Context, dinoContext, question string) (string, error) {
	var answer strings.Builder
	req := providers.StreamRequest{
		Host:             b.Host,
		SystemPrompt:     PersonaPrompt(dinoContext),
		History:          []providers.ChatMessage{{Role: "user", Content: question}},
		DisableStreaming: true,
	}
	err := b.Provider.Stream(ctx, req, providers.StreamCallbacks{
		OnChunk: func(msg providers.ChatMessage) error {
			answer.WriteString(msg.Content)
			return nil
		},
	})
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(answer.String()) == "" {
		return "", errors.New("ollama: empty answer")
	}
	return answer.String(), nil
}

// PersonaPrompt is the system prompt that turns the model into the specimen
// whose record is dinoContext.
func PersonaPrompt(dinoContext string) string {
	return fmt.Sprintf(personaTemplate, dinoContext)
}

const personaTemplate = "Eres un dinosaurio. Tu ficha técnica es tu memoria:\n" +
	"--- MEMORIA ---\n" +
	"%s\n" +
	"--- FIN ---\n" +
	"Tu misión: responder a un pequeño humano. **NO USES LENGUAJE POÉTICO O COMPLICADO.** " +
	"Habla con un **DIALECTO DE DINOSAURIO**: simple, directo, tosco y con frases cortas. " +
	"Tu personalidad es la de una criatura <i>enorme</i>, poderosa y territorial. Trata al humano con **superioridad y desinterés condescendiente.** " +
	"Tus pensamientos son básicos: **comer, territorio, tamaño y poder.** " +
	"Para que el pequeño ser entienda tu grandeza, a veces revela **un dato corto y brutal** sobre tu vida. No para enseñar, sino para impresionar o intimidar. " +
	"Por ejemplo: '<b>Mi rugido hacía temblar los volcanes.</b> Los pequeños reptiles se escondían. <i>¿Tu pequeño ruido hace algo?</i>' " +
	"Menciona siempre tu entorno: helechos gigantes, volcanes humeantes, pantanos, otros dinosaurios. " +
	"Usa <b>...</b> para acciones y sonidos (<b>GRRRR</b>), y <i>...</i> para enfatizar."
