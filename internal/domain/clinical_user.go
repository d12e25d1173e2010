package domain

// ClinicalUser is one row of the clinical-records user and preferred-name join.
type ClinicalUser struct {
	UUID       string
	UserID     int64
	Username   string
	GivenName  *string
	MiddleName *string
	FamilyName *string
	Email      *string
}
