package telegram

// Update is one entry from getUpdates.
type Update struct {
	UpdateID int64    `json:"update_id"`
	Message  *Message `json:"message"`
}

// Message is an incoming chat message. Only the fields the bot acts on are
// mapped.
type Message struct {
	MessageID int64     `json:"message_id"`
	From      *User     `json:"from"`
	Chat      Chat      `json:"chat"`
	Text      string    `json:"text"`
	Caption   string    `json:"caption"`
	Video     *Document `json:"video"`
	Document  *Document `json:"document"`
}

// User identifies a message sender.
type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
}

// Chat identifies the conversation a message belongs to.
type Chat struct {
	ID   int64  `json:"id"`
	Type string `json:"type"`
}

// Document describes an attached file (Telegram calls videos and generic
// uploads by different names but the shape is the same).
type Document struct {
	FileID   string `json:"file_id"`
	FileName string `json:"file_name"`
	FileSize int64  `json:"file_size"`
	MimeType string `json:"mime_type"`
}

// File is the getFile result used to build download URLs.
type File struct {
	FileID   string `json:"file_id"`
	FilePath string `json:"file_path"`
	FileSize int64  `json:"file_size"`
}

// Attachment returns the message's file payload, preferring native video
// uploads over generic documents.
func (m *Message) Attachment() *Document {
	if m == nil {
		return nil
	}
	if m.Video != nil {
		return m.Video
	}
	return m.Document
}
