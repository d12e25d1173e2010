package domain

// ERPUser is one row of the ERP user and partner join.
// Name follows the "first last" convention.
type ERPUser struct {
	Login           string
	Name            string
	Email           *string
	EmailNormalized *string
	Phone           *string
	PhoneSanitized  *string
	UserID          int64
	PartnerID       int64
}
