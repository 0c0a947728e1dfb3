package domain

import "time"

// Buyer is an institutional real-estate buyer.
// Email and Phone are nil when the caller's projection excluded them.
type Buyer struct {
	ID         string    `json:"id"`
	Company    string    `json:"company"`
	Category   *string   `json:"category"`
	BuyBox     *string   `json:"buyBox"`
	Markets    *string   `json:"markets"`
	DealSize   *string   `json:"dealSize"`
	SubmitDeal *string   `json:"submitDeal"`
	Email      *string   `json:"email,omitempty"`
	Phone      *string   `json:"phone,omitempty"`
	HQ         *string   `json:"hq"`
	SourceURL  *string   `json:"sourceUrl"`
	Verified   bool      `json:"verified"`
	CreatedAt  time.Time `json:"-"`
}

// Contact is a person at a buyer organisation.
type Contact struct {
	ID        string  `json:"id"`
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	FullName  *string `json:"fullName"`
	Email     *string `json:"email,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	Title     *string `json:"title"`
	LinkedIn  *string `json:"linkedin"`
	Company   *string `json:"company"`
	BuyerID   *string `json:"buyerId,omitempty"`
	Verified  bool    `json:"verified"`
}

// Filter values that clients send to mean "no filter".
const (
	AllCategories = "All Categories"
	AllTitles     = "All Titles"
)

// BuyerFilter selects buyers. Empty fields do not constrain.
type BuyerFilter struct {
	Search   string
	Category string
	Market   string
}

// IsEmpty reports whether no search or filter was supplied.
func (f BuyerFilter) IsEmpty() bool {
	return f.Search == "" && (f.Category == "" || f.Category == AllCategories) && f.Market == ""
}

// ContactFilter selects contacts. Empty fields do not constrain.
type ContactFilter struct {
	Search  string
	Title   string
	Company string
}

// IsEmpty reports whether no search or filter was supplied.
func (f ContactFilter) IsEmpty() bool {
	return f.Search == "" && (f.Title == "" || f.Title == AllTitles) && f.Company == ""
}

// Page is the requested window over a result set.
type Page struct {
	Limit  int
	Offset int
}

// BuyerPage is the buyer listing response.
type BuyerPage struct {
	Buyers  []Buyer `json:"buyers"`
	Total   int     `json:"total"`
	HasMore bool    `json:"hasMore"`
}

// ContactPage is the contact listing response.
type ContactPage struct {
	Contacts []Contact `json:"contacts"`
	Total    int       `json:"total"`
	HasMore  bool      `json:"hasMore"`
}

// Export is a rendered CSV download.
type Export struct {
	Filename string
	Body     []byte
	Rows     int
}
