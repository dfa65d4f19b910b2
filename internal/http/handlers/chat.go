package handlers

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/munmentor/munmentor/internal/collab"
	"github.com/munmentor/munmentor/internal/mun"
)

type Responder interface {
	Reply(ctx context.Context, prompt string) (string, error)
}

type Recognizer interface {
	Recognize(ctx context.Context, audioContent string) (string, error)
}

type ChatHandler struct {
	ai     Responder
	speech Recognizer
}

func NewChatHandler(ai Responder, speech Recognizer) *ChatHandler {
	return &ChatHandler{ai: ai, speech: speech}
}

type chatRequest struct {
	Message string `json:"message" binding:"required"`
}

type voiceRequest struct {
	Audio string `json:"audio"`
}

// Chat relays a message to the AI model. The assistant always answers:
// model failures degrade to an apology, not an error status.
func (h *ChatHandler) Chat(ctx *gin.Context) {
	var req chatRequest

	if !BindJSON(ctx, &req) {
		return
	}

	reply, err := h.ai.Reply(ctx.Request.Context(), mun.MentorPrompt(req.Message))

	if err != nil {
		reply = apology(err)
	}

	ctx.JSON(http.StatusOK, gin.H{"response": reply})
}

// Voice transcribes uploaded audio and feeds the transcript to the model.
// Recognition failures come back as "Error: ..." text and skip the model
// call.
func (h *ChatHandler) Voice(ctx *gin.Context) {
	text, err := h.speech.Recognize(ctx.Request.Context(), voiceAudio(ctx))

	if err != nil {
		msg := "Error: Could not understand audio"

		if errors.Is(err, collab.ErrSpeechUnavailable) {
			msg = fmt.Sprintf("Error: Speech service unavailable (%v)", err)
		}

		ctx.JSON(http.StatusOK, gin.H{"response": msg})
		return
	}

	reply, err := h.ai.Reply(ctx.Request.Context(), mun.MentorPrompt(text))

	if err != nil {
		reply = apology(err)
	}

	ctx.JSON(http.StatusOK, gin.H{
		"response": reply,
		"text":     text,
	})
}

// voiceAudio extracts base64 audio from the request. JSON bodies carry it
// in the "audio" field; anything else is treated as raw audio bytes and
// encoded here. An empty or unreadable body reads as no audio.
func voiceAudio(ctx *gin.Context) string {
	contentType := strings.ToLower(ctx.GetHeader("Content-Type"))

	if strings.HasPrefix(contentType, "application/json") {
		var req voiceRequest
		_ = ctx.ShouldBindJSON(&req)
		return req.Audio
	}

	raw, err := io.ReadAll(ctx.Request.Body)

	if err != nil || len(raw) == 0 {
		return ""
	}

	return base64.StdEncoding.EncodeToString(raw)
}

func apology(err error) string {
	return fmt.Sprintf("I'm having trouble responding right now. Please try again later. (%v)", err)
}
