// Package contractdata flattens a contract graph into the variable map
// consumed by the legacy and structured template renderers.
package contractdata

import (
	"strings"
	"time"

	"DR-SIGN/internal/models"
)

// Values is the prepared variable map. Nested values are map[string]any or
// []map[string]any so renderers can walk dotted paths.
type Values map[string]any

type Options struct {
	Locale   string
	Location *time.Location
	Now      time.Time
}

// Prepare never fails: missing relations become "" or 0.
func Prepare(contract *models.Contract, opts Options) Values {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}
	if contract == nil {
		contract = &models.Contract{}
	}

	v := Values{}

	v[KeyContractID] = contract.ID
	v[KeyContractNumber] = contract.ContractNumber
	v[KeyContractStatus] = string(contract.Status)
	v[KeyContractType] = ""
	if contract.ContractType != nil {
		v[KeyContractType] = contract.ContractType.Name
	}
	v[KeyDepositPaymentMethod] = contract.DepositPaymentMethod
	v[KeySignatureIP] = contract.SignatureIP
	v[KeySignatureLocation] = contract.SignatureLocation
	v[KeySignatureReference] = contract.SignatureReference

	putTime(v, KeyStartDatetime, contract.StartDatetime, opts.Location)
	putTime(v, KeyEndDatetime, contract.EndDatetime, opts.Location)
	putTime(v, KeyCreatedAt, contract.CreatedAt, opts.Location)
	if contract.SignedAt != nil {
		putTime(v, KeySignedAt, *contract.SignedAt, opts.Location)
	} else {
		putTime(v, KeySignedAt, time.Time{}, opts.Location)
	}
	v[KeyStartDate] = FormatDate(contract.StartDatetime, opts.Location)
	v[KeyEndDate] = FormatDate(contract.EndDatetime, opts.Location)
	v[KeyToday] = FormatDate(opts.Now, opts.Location)

	amounts := map[string]float64{
		KeyAccountHT:      contract.AccountHT,
		KeyAccountTTC:     contract.AccountTTC,
		KeyAccountPaidHT:  contract.AccountPaidHT,
		KeyAccountPaidTTC: contract.AccountPaidTTC,
		KeyCautionHT:      contract.CautionHT,
		KeyCautionTTC:     contract.CautionTTC,
		KeyCautionPaidHT:  contract.CautionPaidHT,
		KeyCautionPaidTTC: contract.CautionPaidTTC,
		KeyTotalPriceHT:   contract.TotalPriceHT,
		KeyTotalPriceTTC:  contract.TotalPriceTTC,
	}
	for key, amount := range amounts {
		putAmount(v, key, amount, opts.Locale)
	}

	customer := prepareCustomer(contract.Customer, opts)
	for key, value := range customer {
		v["customer_"+key] = value
	}
	v[KeyCustomer] = customer

	v[KeyPackageName] = ""
	putAmount(v, KeyPackagePriceHT, 0, opts.Locale)
	putAmount(v, KeyPackagePriceTTC, 0, opts.Locale)
	if contract.Package != nil {
		v[KeyPackageName] = contract.Package.Name
		putAmount(v, KeyPackagePriceHT, contract.Package.PriceHT, opts.Locale)
		putAmount(v, KeyPackagePriceTTC, contract.Package.PriceTTC, opts.Locale)
	}

	v[KeyDresses] = prepareDresses(contract.Dresses, opts.Locale)
	v[KeyAddons] = prepareAddons(contract, opts.Locale)
	v[KeyOrg] = prepareOrganization(contract.Organization)

	v[KeyContract] = map[string]any{
		"id":              contract.ID,
		"number":          contract.ContractNumber,
		"status":          string(contract.Status),
		"type":            v[KeyContractType],
		"start_datetime":  v[KeyStartDatetime],
		"end_datetime":    v[KeyEndDatetime],
		"start_date":      v[KeyStartDate],
		"end_date":        v[KeyEndDate],
		"total_price_ttc": v[KeyTotalPriceTTC],
		"account_ttc":     v[KeyAccountTTC],
		"caution_ttc":     v[KeyCautionTTC],
	}

	return v
}

// putTime stores the RFC 3339 form under key (what the structured renderer's
// date formats expect) and the DD/MM/YYYY HH:mm form under key_display.
func putTime(v Values, key string, t time.Time, loc *time.Location) {
	if t.IsZero() {
		v[key] = ""
		v[key+DisplaySuffix] = ""
		return
	}
	v[key] = t.In(loc).Format(time.RFC3339)
	v[key+DisplaySuffix] = FormatDateTime(t, loc)
}

func putAmount(v Values, key string, amount float64, locale string) {
	v[key] = FormatAmount(amount, locale)
	v[key+ValueSuffix] = amount
}

func prepareCustomer(c *models.Customer, opts Options) map[string]any {
	if c == nil {
		c = &models.Customer{}
	}
	birthday := ""
	if c.Birthday != nil {
		birthday = FormatDate(*c.Birthday, opts.Location)
	}
	return map[string]any{
		"firstname": c.Firstname,
		"lastname":  c.Lastname,
		"fullname":  strings.TrimSpace(c.Firstname + " " + c.Lastname),
		"email":     c.Email,
		"phone":     c.Phone,
		"address":   c.Address,
		"city":      c.City,
		"zip_code":  c.ZipCode,
		"country":   c.Country,
		"birthday":  birthday,
	}
}

func prepareDresses(links []models.ContractDress, locale string) []map[string]any {
	rows := make([]map[string]any, 0, len(links))
	for _, link := range links {
		d := link.Dress
		if d == nil {
			continue
		}
		rows = append(rows, map[string]any{
			"id":                      d.ID,
			"name":                    d.Name,
			"reference":               d.Reference,
			"type":                    d.Type,
			"size":                    d.Size,
			"color":                   d.Color,
			"condition":               d.Condition,
			"price_ht":                FormatAmount(d.PriceHT, locale),
			"price_ttc":               FormatAmount(d.PriceTTC, locale),
			"price_per_day_ht":        FormatAmount(d.PricePerDayHT, locale),
			"price_per_day_ttc":       FormatAmount(d.PricePerDayTTC, locale),
			"price_ttc" + ValueSuffix: d.PriceTTC,
		})
	}
	return rows
}

func prepareAddons(contract *models.Contract, locale string) []map[string]any {
	included := contract.Package.IncludedAddonIDs()
	rows := make([]map[string]any, 0, len(contract.AddonLinks))
	for _, link := range contract.AddonLinks {
		a := link.Addon
		if a == nil {
			continue
		}
		rows = append(rows, map[string]any{
			"id":                      a.ID,
			"name":                    a.Name,
			"description":             a.Description,
			"price_ht":                FormatAmount(a.PriceHT, locale),
			"price_ttc":               FormatAmount(a.PriceTTC, locale),
			"price_ttc" + ValueSuffix: a.PriceTTC,
			"included":                included[a.ID],
		})
	}
	return rows
}

func prepareOrganization(o *models.Organization) map[string]any {
	if o == nil {
		o = &models.Organization{}
	}
	return map[string]any{
		"name":     o.Name,
		"address":  o.Address,
		"city":     o.City,
		"zip_code": o.ZipCode,
		"country":  o.Country,
		"siret":    o.Siret,
		"email":    o.Email,
		"phone":    o.Phone,
	}
}
