package models

// Customer captures the farmer profile collected by field agents,
// including KYC details and the service the customer registered for.
type Customer struct {
	BaseModel

	FirstName  string `json:"first_name"`
	MiddleName string `json:"middle_name"`
	LastName   string `json:"last_name"`
	NickName   string `json:"nick_name"`

	PhoneNumber string `json:"phone_number"`
	Email       string `gorm:"index" json:"email"`

	District string `json:"district"`
	Mandal   string `json:"mandal"`
	Village  string `json:"village"`

	RegisterBy string `json:"register_by"`
	UserID     string `gorm:"index;type:uuid" json:"user_id"`

	KYCNumber string `json:"kyc_number"`
	KYCURL    string `json:"kyc_url"`

	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`

	Service    string `json:"service"`
	SubService string `json:"sub_service"`
}
