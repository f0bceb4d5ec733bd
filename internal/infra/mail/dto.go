package mail

type HotLeadEmailData struct {
	LeadID      string
	Email       string
	Tag         string
	LastMessage string
}

type EmailSender struct {
	Host     string
	Port     int
	User     string
	Password string
	SalesTo  string
}
