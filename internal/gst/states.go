package gst

import "strings"

// State is an Indian state or union territory with its GST state code
type State struct {
	Code             string
	Name             string
	IsUnionTerritory bool
}

// States lists the GST state codes as printed in the first two digits of a GSTIN
var States = []State{
	{"01", "Jammu and Kashmir", true},
	{"02", "Himachal Pradesh", false},
	{"03", "Punjab", false},
	{"04", "Chandigarh", true},
	{"05", "Uttarakhand", false},
	{"06", "Haryana", false},
	{"07", "Delhi", true},
	{"08", "Rajasthan", false},
	{"09", "Uttar Pradesh", false},
	{"10", "Bihar", false},
	{"11", "Sikkim", false},
	{"12", "Arunachal Pradesh", false},
	{"13", "Nagaland", false},
	{"14", "Manipur", false},
	{"15", "Mizoram", false},
	{"16", "Tripura", false},
	{"17", "Meghalaya", false},
	{"18", "Assam", false},
	{"19", "West Bengal", false},
	{"20", "Jharkhand", false},
	{"21", "Odisha", false},
	{"22", "Chhattisgarh", false},
	{"23", "Madhya Pradesh", false},
	{"24", "Gujarat", false},
	{"26", "Dadra and Nagar Haveli and Daman and Diu", true},
	{"27", "Maharashtra", false},
	{"29", "Karnataka", false},
	{"30", "Goa", false},
	{"31", "Lakshadweep", true},
	{"32", "Kerala", false},
	{"33", "Tamil Nadu", false},
	{"34", "Puducherry", true},
	{"35", "Andaman and Nicobar Islands", true},
	{"36", "Telangana", false},
	{"37", "Andhra Pradesh", false},
	{"38", "Ladakh", true},
}

// StateCode returns the GST state code for a state name, or "" if unknown
func StateCode(name string) string {
	n := normalizeState(name)
	for _, s := range States {
		if strings.ToLower(s.Name) == n {
			return s.Code
		}
	}
	return ""
}

// GSTINMatchesState reports whether the GSTIN's state prefix belongs to the
// named state. Unknown states are not checked.
func GSTINMatchesState(gstin, state string) bool {
	code := StateCode(state)
	if code == "" || len(gstin) < 2 {
		return true
	}
	return gstin[:2] == code
}
