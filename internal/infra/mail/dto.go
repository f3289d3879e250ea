package mail

type NeedsAttentionEmailData struct {
	GuestName string
	Phone     string
	Reply     string
}

type EmailSender struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	To       string
}
