package contractdata

// Top-level keys produced by Prepare. Amount keys hold the formatted string;
// the same key with the ValueSuffix holds the raw float64.
const (
	KeyContractID           = "contract_id"
	KeyContractNumber       = "contract_number"
	KeyContractStatus       = "contract_status"
	KeyContractType         = "contract_type"
	KeyStartDatetime        = "start_datetime"
	KeyEndDatetime          = "end_datetime"
	KeyStartDate            = "start_date"
	KeyEndDate              = "end_date"
	KeyCreatedAt            = "created_at"
	KeySignedAt             = "signed_at"
	KeySignatureIP          = "signature_ip"
	KeySignatureLocation    = "signature_location"
	KeySignatureReference   = "signature_reference"
	KeyDepositPaymentMethod = "deposit_payment_method"
	KeyToday                = "today"

	KeyAccountHT      = "account_ht"
	KeyAccountTTC     = "account_ttc"
	KeyAccountPaidHT  = "account_paid_ht"
	KeyAccountPaidTTC = "account_paid_ttc"
	KeyCautionHT      = "caution_ht"
	KeyCautionTTC     = "caution_ttc"
	KeyCautionPaidHT  = "caution_paid_ht"
	KeyCautionPaidTTC = "caution_paid_ttc"
	KeyTotalPriceHT   = "total_price_ht"
	KeyTotalPriceTTC  = "total_price_ttc"

	KeyCustomerFirstname = "customer_firstname"
	KeyCustomerLastname  = "customer_lastname"
	KeyCustomerFullname  = "customer_fullname"
	KeyCustomerEmail     = "customer_email"
	KeyCustomerPhone     = "customer_phone"
	KeyCustomerAddress   = "customer_address"
	KeyCustomerCity      = "customer_city"
	KeyCustomerZipCode   = "customer_zip_code"
	KeyCustomerCountry   = "customer_country"
	KeyCustomerBirthday  = "customer_birthday"

	KeyPackageName     = "package_name"
	KeyPackagePriceHT  = "package_price_ht"
	KeyPackagePriceTTC = "package_price_ttc"

	KeyDresses = "dresses"
	KeyAddons  = "addons"

	// Nested maps for dotted access: org.name, customer.email, contract.number.
	KeyOrg      = "org"
	KeyCustomer = "customer"
	KeyContract = "contract"

	// Display variants of the datetime keys, already in DD/MM/YYYY[ HH:mm].
	DisplaySuffix = "_display"
	// Raw numeric variants of the amount keys.
	ValueSuffix = "_value"
)
