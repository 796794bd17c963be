package model

// AgeDistribution buckets patients by age band. The bands follow the
// national reporting template.
type AgeDistribution struct {
	Under18    int `json:"under_18"`
	From18To25 int `json:"from_18_to_25"`
	From26To35 int `json:"from_26_to_35"`
	Over35     int `json:"over_35"`
}

// GestationDistribution buckets patients by trimester.
type GestationDistribution struct {
	Trimester1 int `json:"trimester_1"` // <= 12 weeks
	Trimester2 int `json:"trimester_2"` // 13-26 weeks
	Trimester3 int `json:"trimester_3"` // > 26 weeks
}

// AnonymizedStats is the only view partners ever get of patient data:
// counts, never records.
type AnonymizedStats struct {
	TotalPatients int                   `json:"total_patients"`
	Ages          AgeDistribution       `json:"age_distribution"`
	Gestation     GestationDistribution `json:"gestation_distribution"`
}

// KPISummary feeds the dashboard headline cards.
type KPISummary struct {
	TotalPatients    int     `json:"total_patients"`
	CPN1Done         int     `json:"cpn1_done"`
	CPN4Done         int     `json:"cpn4_done"`
	CPONRate         float64 `json:"cpon_rate"`
	RisksRed         int     `json:"risks_red"`
	RisksOrange      int     `json:"risks_orange"`
	RisksGreen       int     `json:"risks_green"`
	ReferralDelayAvg float64 `json:"referral_delay_avg_min"`
	CoverageActive   int     `json:"coverage_active"`
	CoverageRenewal  int     `json:"coverage_renewal_due"`
}

// DataValue is one line of a DHIS2 dataValueSet export.
type DataValue struct {
	DataElement string `json:"dataElement"`
	Period      string `json:"period"`
	OrgUnit     string `json:"orgUnit"`
	Value       string `json:"value"`
}

// DataValueSet is the DHIS2 aggregate payload shape.
type DataValueSet struct {
	DataSet      string      `json:"dataSet"`
	CompleteDate string      `json:"completeDate"`
	Period       string      `json:"period"`
	OrgUnit      string      `json:"orgUnit"`
	DataValues   []DataValue `json:"dataValues"`
}
