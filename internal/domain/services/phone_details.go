package services

import (
	"github.com/nyaruka/phonenumbers"

	"checkcheck-api/internal/domain/models"
)

var numberTypeNames = map[phonenumbers.PhoneNumberType]string{
	phonenumbers.FIXED_LINE:           "fixed_line",
	phonenumbers.MOBILE:               "mobile",
	phonenumbers.FIXED_LINE_OR_MOBILE: "fixed_line_or_mobile",
	phonenumbers.TOLL_FREE:            "toll_free",
	phonenumbers.PREMIUM_RATE:         "premium_rate",
	phonenumbers.SHARED_COST:          "shared_cost",
	phonenumbers.VOIP:                 "voip",
	phonenumbers.PERSONAL_NUMBER:      "personal_number",
	phonenumbers.PAGER:                "pager",
	phonenumbers.UAN:                  "uan",
	phonenumbers.VOICEMAIL:            "voicemail",
}

// DescribePhone parses the sender number with libphonenumber metadata.
// Numbers without a leading + are read relative to homeRegion. Returns nil
// for an empty number.
func DescribePhone(number, homeRegion string) *models.PhoneDetails {
	if number == "" {
		return nil
	}

	num, err := phonenumbers.Parse(number, homeRegion)
	if err != nil {
		return &models.PhoneDetails{Parsed: false}
	}

	details := &models.PhoneDetails{
		Parsed:      true,
		RegionCode:  phonenumbers.GetRegionCodeForNumber(num),
		CountryCode: num.GetCountryCode(),
		IsValid:     phonenumbers.IsValidNumber(num),
		E164:        phonenumbers.Format(num, phonenumbers.E164),
	}
	if name, ok := numberTypeNames[phonenumbers.GetNumberType(num)]; ok {
		details.NumberType = name
	} else {
		details.NumberType = "unknown"
	}
	return details
}
