package dialogue

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"symptom-triage-agent/internal/nlu"
	"symptom-triage-agent/internal/translate"
)

// Handler exposes the dialogue service over HTTP: a small REST surface for
// direct clients and a Dialogflow fulfillment webhook matching the agent's
// original deployment.
type Handler struct {
	svc        Service
	classifier nlu.Classifier
	translator translate.Translator
}

func NewHandler(svc Service, classifier nlu.Classifier, translator translate.Translator) *Handler {
	if translator == nil {
		translator = translate.Noop{}
	}
	return &Handler{svc: svc, classifier: classifier, translator: translator}
}

type MessageRequest struct {
	Text string `json:"text"`
	// Done is the explicit "no further symptoms" signal. When absent the
	// intent classifier decides.
	Done *bool `json:"done,omitempty"`
	// Lang is an optional ISO 639-1 hint; empty means detect.
	Lang string `json:"lang,omitempty"`
}

type MessageResponse struct {
	SessionID string         `json:"session_id"`
	Result    DialogueResult `json:"result"`
}

func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	s, err := h.svc.CreateSession(r.Context())
	if err != nil {
		http.Error(w, "Failed to create session", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]string{"session_id": s.ID})
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s, err := h.svc.GetSession(r.Context(), id)
	if err != nil {
		if err == ErrSessionNotFound {
			http.Error(w, "Session not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to load session", http.StatusInternalServerError)
		return
	}
	writeJSON(w, s)
}

func (h *Handler) ResetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.svc.ResetSession(r.Context(), id); err != nil {
		if err == ErrSessionNotFound {
			http.Error(w, "Session not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to reset session", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.svc.DeleteSession(r.Context(), id); err != nil {
		http.Error(w, "Failed to delete session", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PostMessage processes one REST turn. Non-English input is translated to
// the working language before extraction and the reply is translated back;
// translation failures fall back to the untranslated text.
func (h *Handler) PostMessage(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")

	var req MessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	ctx := r.Context()

	lang := req.Lang
	if lang == "" {
		detected, err := h.translator.Detect(ctx, req.Text)
		if err != nil {
			log.Printf("language detection failed: %v", err)
			detected = translate.WorkingLanguage
		}
		lang = detected
	}
	if !translate.Supported(lang) {
		lang = translate.WorkingLanguage
	}

	text := req.Text
	if lang != translate.WorkingLanguage {
		translated, err := h.translator.Translate(ctx, text, translate.WorkingLanguage)
		if err != nil {
			log.Printf("input translation failed: %v", err)
		} else {
			text = translated
		}
	}

	noMore := false
	if req.Done != nil {
		noMore = *req.Done
	} else if h.classifier != nil {
		res, err := h.classifier.Classify(ctx, text)
		if err != nil {
			log.Printf("intent classification failed: %v", err)
		}
		switch res.Intent {
		case nlu.IntentNoMoreSymptoms:
			noMore = true
		case nlu.IntentReset:
			if err := h.svc.ResetSession(ctx, sessionID); err != nil && err != ErrSessionNotFound {
				log.Printf("reset session %s failed: %v", sessionID, err)
				http.Error(w, PromptTryAgain, http.StatusInternalServerError)
				return
			}
			writeJSON(w, MessageResponse{
				SessionID: sessionID,
				Result:    DialogueResult{State: PhaseInit, ResponseText: PromptDescribeSymptoms},
			})
			return
		}
	}

	result, err := h.svc.ProcessTurn(ctx, sessionID, text, noMore)
	if err != nil {
		log.Printf("process turn failed for session %s: %v", sessionID, err)
		http.Error(w, PromptTryAgain, http.StatusInternalServerError)
		return
	}

	if lang != translate.WorkingLanguage {
		translated, err := h.translator.Translate(ctx, result.ResponseText, lang)
		if err != nil {
			log.Printf("output translation failed: %v", err)
		} else {
			result.ResponseText = translated
		}
	}

	writeJSON(w, MessageResponse{SessionID: sessionID, Result: *result})
}

// Dialogflow fulfillment request/response shapes, reduced to the fields the
// webhook actually reads and writes.
type webhookRequest struct {
	Session     string `json:"session"`
	QueryResult struct {
		QueryText    string `json:"queryText"`
		LanguageCode string `json:"languageCode"`
		Intent       struct {
			DisplayName string `json:"displayName"`
		} `json:"intent"`
	} `json:"queryResult"`
}

type webhookResponse struct {
	FulfillmentText string         `json:"fulfillmentText"`
	Payload         map[string]any `json:"payload,omitempty"`
}

// HandleWebhook serves the Dialogflow fulfillment endpoint. The session id
// is the last segment of the Dialogflow session path; the "No More
// Symptoms" intent maps to the engine's no-more-symptoms flag. Errors
// always yield a graceful fulfillment text, never an empty response.
func (h *Handler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	var req webhookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, webhookResponse{FulfillmentText: PromptTryAgain})
		return
	}
	ctx := r.Context()

	parts := strings.Split(req.Session, "/")
	sessionID := parts[len(parts)-1]

	lang := req.QueryResult.LanguageCode
	if !translate.Supported(lang) {
		lang = translate.WorkingLanguage
	}

	text := req.QueryResult.QueryText
	if lang != translate.WorkingLanguage {
		translated, err := h.translator.Translate(ctx, text, translate.WorkingLanguage)
		if err != nil {
			log.Printf("input translation failed: %v", err)
		} else {
			text = translated
		}
	}

	noMore := req.QueryResult.Intent.DisplayName == "No More Symptoms"

	result, err := h.svc.ProcessTurn(ctx, sessionID, text, noMore)
	if err != nil {
		log.Printf("webhook turn failed for session %s: %v", sessionID, err)
		writeJSON(w, webhookResponse{FulfillmentText: PromptTryAgain})
		return
	}

	responseText := result.ResponseText
	if lang != translate.WorkingLanguage {
		translated, err := h.translator.Translate(ctx, responseText, lang)
		if err != nil {
			log.Printf("output translation failed: %v", err)
		} else {
			responseText = translated
		}
	}

	writeJSON(w, webhookResponse{
		FulfillmentText: responseText,
		Payload: map[string]any{
			"google": map[string]any{
				"expectUserResponse": !result.State.Terminal(),
				"richResponse": map[string]any{
					"items": []any{
						map[string]any{
							"simpleResponse": map[string]any{
								"textToSpeech": responseText,
								"displayText":  responseText,
							},
						},
					},
				},
			},
		},
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// RegisterRoutes mounts the dialogue endpoints on the router.
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Post("/sessions", h.CreateSession)
	r.Get("/sessions/{id}", h.GetSession)
	r.Post("/sessions/{id}/messages", h.PostMessage)
	r.Post("/sessions/{id}/reset", h.ResetSession)
	r.Delete("/sessions/{id}", h.DeleteSession)
	r.Post("/webhook", h.HandleWebhook)
}
