package whatsapp

// Outbound message request for the Graph API /messages endpoint.
type sendMessageRequest struct {
	MessagingProduct string      `json:"messaging_product"`
	To               string      `json:"to"`
	Type             string      `json:"type"`
	Text             messageText `json:"text"`
}

type messageText struct {
	Body string `json:"body"`
}

type SendMessageResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
	Error *APIError `json:"error"`
}

type APIError struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
	Type    string `json:"type"`
}

// Meta-standard webhook envelope for inbound deliveries.
type WebhookPayload struct {
	Object string  `json:"object"`
	Entry  []Entry `json:"entry"`
}

type Entry struct {
	ID      string   `json:"id"`
	Changes []Change `json:"changes"`
}

type Change struct {
	Field string      `json:"field"`
	Value ChangeValue `json:"value"`
}

type ChangeValue struct {
	MessagingProduct string    `json:"messaging_product"`
	Metadata         Metadata  `json:"metadata"`
	Messages         []Message `json:"messages,omitempty"`
	Statuses         []Status  `json:"statuses,omitempty"`
}

type Metadata struct {
	DisplayPhoneNumber string `json:"display_phone_number"`
	PhoneNumberID      string `json:"phone_number_id"`
}

type Message struct {
	From      string       `json:"from"`
	ID        string       `json:"id"`
	Timestamp string       `json:"timestamp"`
	Type      string       `json:"type"`
	Text      *messageText `json:"text,omitempty"`
}

// Status is a delivery receipt (sent/delivered/read); carried in the
// same envelope but not acted on here.
type Status struct {
	ID          string `json:"id"`
	RecipientID string `json:"recipient_id"`
	Status      string `json:"status"`
	Timestamp   string `json:"timestamp"`
}

// FirstTextMessage extracts the sender and text of the first message
// entry. Batched payloads can carry more than one entry; only the
// first is processed, a known limitation kept for parity with the
// provider's usual one-message deliveries.
func (p *WebhookPayload) FirstTextMessage() (from, text string, ok bool) {
	if p.Object != "whatsapp_business_account" {
		return "", "", false
	}
	if len(p.Entry) == 0 || len(p.Entry[0].Changes) == 0 {
		return "", "", false
	}

	messages := p.Entry[0].Changes[0].Value.Messages
	if len(messages) == 0 {
		return "", "", false
	}

	msg := messages[0]
	// Media, reactions and the like have no text body.
	if msg.Text == nil || msg.Text.Body == "" {
		return "", "", false
	}

	return msg.From, msg.Text.Body, true
}
