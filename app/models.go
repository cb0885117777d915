package app

import (
	"html/template"
	"time"
)

// ------------------- Data Models -------------------

// Persona is an assistant role the chat UI can talk to.
type Persona struct {
	Code          string    `json:"personaCode" yaml:"persona_code"`
	Category      string    `json:"category" yaml:"category"`
	Title         string    `json:"title" yaml:"title"`
	Description   string    `json:"description" yaml:"description"`
	DescriptionEn string    `json:"descriptionEn" yaml:"description_en"`
	WelcomeMsg    string    `json:"welcomeMsg" yaml:"welcome_msg"`
	SystemPrompt  string    `json:"systemPrompt" yaml:"system_prompt"`
	UpdatedAt     time.Time `json:"updatedAt" yaml:"-"`
}

// Conversation is one question/answer exchange with a persona.
type Conversation struct {
	ID             string    `json:"conversationId"`
	PersonaCode    string    `json:"personaCode"`
	UserID         string    `json:"userId,omitempty"`
	UserQuery      string    `json:"userQuery"`
	AIResponse     string    `json:"aiResponse"`
	AIResponseHTML string    `json:"aiResponseHtml,omitempty"`
	Created        time.Time `json:"createdDate"`
}

// ConversationFilter selects one page of the admin conversation listing.
// Zero values match everything; End is exclusive.
type ConversationFilter struct {
	PersonaCode string
	UserID      string
	Start       time.Time
	End         time.Time
	Page        int
	Size        int
}

// ConversationPage is one page of conversations, newest first.
type ConversationPage struct {
	Conversations []*Conversation `json:"conversations"`
	CurrentPage   int             `json:"currentPage"`
	PageSize      int             `json:"pageSize"`
	TotalPages    int             `json:"totalPages"`
	TotalElements int64           `json:"totalElements"`
	First         bool            `json:"first"`
	Last          bool            `json:"last"`
	HasNext       bool            `json:"hasNext"`
	HasPrevious   bool            `json:"hasPrevious"`
}

// Feedback is a user rating of one answer.
type Feedback struct {
	ConversationID string `json:"conversationId"`
	Rating         int    `json:"rating"`
	Comment        string `json:"comment"`
}

// ------------------- Template Data -------------------

// IndexViewData holds data for the index.html template.
type IndexViewData struct {
	Title       string
	Description string
	Personas    []*Persona
}

// PersonaViewData holds data for the persona.html template.
type PersonaViewData struct {
	Persona        *Persona
	WelcomeHTML    template.HTML
	Messages       []*MessageView
	QuickQuestions []string
}

// MessageView is a conversation with its answer rendered for display.
type MessageView struct {
	*Conversation
	ResponseHTML template.HTML
}

// ErrorViewData holds data for the error.html template.
type ErrorViewData struct {
	Title   string
	Message string
	BackURL string
}
