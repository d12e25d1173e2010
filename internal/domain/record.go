package domain

// SourceRecord is a tagged variant over the closed set of source row shapes.
// Exactly one payload matching Source is set.
type SourceRecord struct {
	Source   SourceSystem
	Clinical *ClinicalUser
	ERP      *ERPUser
}

// ClinicalRecord wraps a clinical-records row.
func ClinicalRecord(u ClinicalUser) SourceRecord {
	return SourceRecord{Source: SourceClinical, Clinical: &u}
}

// ERPRecord wraps an ERP row.
func ERPRecord(u ERPUser) SourceRecord {
	return SourceRecord{Source: SourceERP, ERP: &u}
}
