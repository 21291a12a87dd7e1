package domain

const MailTypeRosterUpdated = "roster_updated"

type MailMessage struct {
	Type string `json:"type"`
	To   string `json:"to"`
	Data any    `json:"data"`
}

type RosterUpdatedMailData struct {
	Dates     []string `json:"dates"`
	ItemNames []string `json:"itemNames"`
	Notes     string   `json:"notes"`
	UpdatedBy string   `json:"updatedBy"`
}
