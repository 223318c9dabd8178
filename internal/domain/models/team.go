// internal/domain/models/team.go
package models

// Team ("équipe") groups users and tickets.
//
// TicketList and UtilisateurList are maintained by the backend from the
// children's idEquip references. They are display-only here: the console
// never appends to them, it refetches the team after a child changes.
type Team struct {
	ID              int64    `json:"id,omitempty"`
	NomEquipe       string   `json:"nomEquipe"`
	CreationDate    Millis   `json:"creationDate,omitempty"`
	CreationUser    string   `json:"creationUser,omitempty"`
	TicketList      []Ticket `json:"ticketList,omitempty"`
	UtilisateurList []User   `json:"utilisateurList,omitempty"`
}

// Poste is a job position grouping users.
type Poste struct {
	ID              int64  `json:"id,omitempty"`
	Designation     string `json:"designation"`
	Code            string `json:"code"`
	UtilisateurList []User `json:"utilisateurList,omitempty"`
}

// Module is a product area that tickets are filed against.
type Module struct {
	ID           int64    `json:"id,omitempty"`
	Designation  string   `json:"designation"`
	Code         string   `json:"code"`
	CreationDate Millis   `json:"creationDate,omitempty"`
	CreationUser string   `json:"creationUser,omitempty"`
	TicketList   []Ticket `json:"ticketList,omitempty"`
}

// Client is a customer a ticket is raised for. Read-only in the console.
type Client struct {
	ID     int64  `json:"id"`
	Nom    string `json:"nom"`
	Prenom string `json:"prenom"`
}

// FullName joins the client's names.
func (c Client) FullName() string {
	switch {
	case c.Nom == "":
		return c.Prenom
	case c.Prenom == "":
		return c.Nom
	default:
		return c.Nom + " " + c.Prenom
	}
}
