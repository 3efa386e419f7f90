package domain

// Post represents a feed entry.
type Post struct {
	ID          string `json:"_id"`
	ImageURL    string `json:"imageUrl"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Author      string `json:"author,omitempty"`
	CreatedAt   string `json:"createdAt,omitempty"`
}

// Society represents a managed residential society.
type Society struct {
	ID          string `json:"_id"`
	Name        string `json:"name"`
	Address     string `json:"address"`
	OwnerName   string `json:"ownerName"`
	PhoneNumber string `json:"phoneNumber"`
}
