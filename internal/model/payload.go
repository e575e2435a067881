package model

// --- Voice provider webhook --- //

// VoiceWebhookPayload is the body the voice provider posts at call events.
type VoiceWebhookPayload struct {
	Message VoiceWebhookMessage `json:"message"`
}

// VoiceWebhookMessage carries the event type and call details.
type VoiceWebhookMessage struct {
	Type     string        `json:"type"`
	Call     VoiceCall     `json:"call"`
	Analysis VoiceAnalysis `json:"analysis"`
}

// VoiceCall identifies the call and the dialed customer.
type VoiceCall struct {
	ID       string            `json:"id"`
	Status   string            `json:"status,omitempty"`
	Customer VoiceCallCustomer `json:"customer"`
}

// VoiceCallCustomer is the customer side of a call.
type VoiceCallCustomer struct {
	Name   string `json:"name,omitempty"`
	Number string `json:"number"`
}

// VoiceAnalysis holds the structured data extracted from the conversation.
type VoiceAnalysis struct {
	StructuredData map[string]interface{} `json:"structuredData"`
	Summary        string                 `json:"summary,omitempty"`
}

// EndOfCallReport is the message type that carries collected data.
const EndOfCallReport = "end-of-call-report"

// --- Queue intake --- //

// CallReportPayload is a voice webhook delivered through the queue.
type CallReportPayload struct {
	Message struct {
		Type string `json:"type" validate:"required"`
		Call struct {
			ID       string `json:"id"`
			Customer struct {
				Number string `json:"number" validate:"required,phone"`
			} `json:"customer"`
		} `json:"call"`
		Analysis struct {
			StructuredData map[string]interface{} `json:"structuredData"`
		} `json:"analysis"`
	} `json:"message"`
}

// ToWebhook converts the queued report into the webhook shape.
func (p CallReportPayload) ToWebhook() VoiceWebhookPayload {
	return VoiceWebhookPayload{Message: VoiceWebhookMessage{
		Type: p.Message.Type,
		Call: VoiceCall{
			ID:       p.Message.Call.ID,
			Customer: VoiceCallCustomer{Number: p.Message.Call.Customer.Number},
		},
		Analysis: VoiceAnalysis{StructuredData: p.Message.Analysis.StructuredData},
	}}
}

// DocumentExtractedPayload carries values an external extractor pulled from an uploaded document.
type DocumentExtractedPayload struct {
	BusinessID         int64                  `json:"business_id" validate:"required,gt=0"`
	UploadedDocumentID int64                  `json:"uploaded_document_id" validate:"required,gt=0"`
	Values             map[string]interface{} `json:"values" validate:"required"`
}
