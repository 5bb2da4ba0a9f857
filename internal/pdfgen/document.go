package pdfgen

import (
	"fmt"
	"strings"
	"time"

	"DR-SIGN/internal/contractdata"
	"DR-SIGN/internal/models"
)

const includedAnnotation = " (inclus dans le forfait)"

// SignatureDisclaimer is the legal notice printed under an electronic signature.
const SignatureDisclaimer = "Ce document a été signé électroniquement. Conformément aux articles 1366 et 1367 du " +
	"Code civil et au règlement (UE) n° 910/2014 dit eIDAS, la signature électronique a la même valeur juridique " +
	"qu'une signature manuscrite. L'adresse IP, la localisation approximative et la référence ci-dessus ont été " +
	"enregistrées au moment de la signature et constituent la preuve de l'engagement du client."

type Options struct {
	IncludeSignatureBlock bool
	Locale                string
	Location              *time.Location
	Now                   time.Time
}

// Generate lays the contract out on a new fpdf canvas and returns the PDF bytes.
func Generate(contract *models.Contract, opts Options) ([]byte, error) {
	return Render(NewFPDFCanvas(), contract, opts)
}

// Render lays the contract out on canvas. Blocks are always emitted in the
// same order; the signature block only when requested.
func Render(canvas Canvas, contract *models.Contract, opts Options) ([]byte, error) {
	if contract == nil {
		return nil, fmt.Errorf("pdf layout: nil contract")
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}
	d := &document{l: NewLayout(canvas), c: contract, opts: opts}

	d.companyHeader()
	d.l.Rule()
	d.titleBlock()
	d.l.Rule()
	d.customerBlock()
	d.l.Rule()
	d.periodBlock()
	d.l.Rule()
	d.financialBlock()
	d.l.Rule()
	d.dressesBlock()
	d.addonsBlock()
	d.l.Rule()
	d.clausesBlock()
	if opts.IncludeSignatureBlock {
		d.signatureBlock()
	}

	return canvas.Bytes()
}

type document struct {
	l    *Layout
	c    *models.Contract
	opts Options
}

func (d *document) money(v float64) string {
	return contractdata.FormatCurrency(v, d.opts.Locale)
}

func (d *document) companyHeader() {
	org := d.c.Organization
	if org == nil {
		org = &models.Organization{}
	}
	d.l.Paragraph(org.Name, styleCompany)
	address := joinNonEmpty(", ", org.Address, joinNonEmpty(" ", org.ZipCode, org.City), org.Country)
	if address != "" {
		d.l.Paragraph(address, styleBody)
	}
	if org.Siret != "" {
		d.l.Paragraph("SIRET : "+org.Siret, styleBody)
	}
	if contact := joinNonEmpty(" - ", org.Email, org.Phone); contact != "" {
		d.l.Paragraph(contact, styleSmall)
	}
}

func (d *document) titleBlock() {
	typeName := ""
	if d.c.ContractType != nil {
		typeName = d.c.ContractType.Name
	}
	d.l.Paragraph(Classify(typeName).Title(), styleTitle)
	d.l.Paragraph("Contrat n° "+d.c.ContractNumber, styleBody)
	if d.c.SignedAt != nil {
		d.l.Paragraph("Signé le "+contractdata.FormatDateTime(*d.c.SignedAt, d.opts.Location), styleBody)
	} else {
		d.l.Paragraph("Édité le "+contractdata.FormatDateTime(d.opts.Now, d.opts.Location), styleBody)
	}
}

func (d *document) customerBlock() {
	c := d.c.Customer
	if c == nil {
		c = &models.Customer{}
	}
	d.l.Paragraph("CLIENT", styleHeading)
	d.l.LabelValue("Nom :", strings.TrimSpace(c.Firstname+" "+c.Lastname))
	d.l.LabelValue("Email :", c.Email)
	d.l.LabelValue("Téléphone :", c.Phone)
	d.l.LabelValue("Adresse :", joinNonEmpty(", ", c.Address, joinNonEmpty(" ", c.ZipCode, c.City), c.Country))
}

func (d *document) periodBlock() {
	loc := d.opts.Location
	d.l.Paragraph("PÉRIODE ET PAIEMENT", styleHeading)
	d.l.LabelValue("Début :", contractdata.FormatDateTime(d.c.StartDatetime, loc))
	d.l.LabelValue("Fin :", contractdata.FormatDateTime(d.c.EndDatetime, loc))
	d.l.LabelValue("Mode de paiement de l'acompte :", d.c.DepositPaymentMethod)
	d.l.LabelValue("Contrat créé le :", contractdata.FormatDate(d.c.CreatedAt, loc))
}

func (d *document) financialBlock() {
	d.l.Paragraph("RÉCAPITULATIF FINANCIER", styleHeading)
	d.l.LabelValue("Total TTC :", d.money(d.c.TotalPriceTTC))
	d.l.LabelValue("Acompte TTC :", d.money(d.c.AccountTTC))
	d.l.LabelValue("Acompte versé TTC :", d.money(d.c.AccountPaidTTC))
	d.l.LabelValue("Caution TTC :", d.money(d.c.CautionTTC))
	d.l.LabelValue("Caution versée TTC :", d.money(d.c.CautionPaidTTC))
}

func (d *document) dressesBlock() {
	var rows []string
	for _, link := range d.c.Dresses {
		if link.Dress == nil {
			continue
		}
		label := link.Dress.Name
		if link.Dress.Reference != "" {
			label += " (réf. " + link.Dress.Reference + ")"
		}
		rows = append(rows, "- "+label+" : "+d.money(link.Dress.PriceTTC))
	}
	if len(rows) == 0 {
		return
	}
	d.l.Paragraph("ROBES INCLUSES", styleHeading)
	for _, row := range rows {
		d.l.Paragraph(row, TextStyle{Font: FontRegular, Size: 10, Leading: 14, Indent: 10})
	}
	d.l.Space(6)
}

func (d *document) addonsBlock() {
	included := d.c.Package.IncludedAddonIDs()
	var addons []*models.ContractAddon
	for _, link := range d.c.AddonLinks {
		if link.Addon != nil {
			addons = append(addons, link.Addon)
		}
	}
	if len(addons) == 0 {
		return
	}
	row := TextStyle{Font: FontRegular, Size: 10, Leading: 14, Indent: 10}
	d.l.Paragraph("OPTIONS", styleHeading)
	for _, addon := range addons {
		prefix := "- " + addon.Name + " : "
		if included[addon.ID] {
			d.l.StruckRow(prefix, d.money(addon.PriceTTC), includedAnnotation, row)
			continue
		}
		d.l.Paragraph(prefix+d.money(addon.PriceTTC), row)
	}
}

func (d *document) clausesBlock() {
	typeName := ""
	if d.c.ContractType != nil {
		typeName = d.c.ContractType.Name
	}
	d.l.Paragraph("CONDITIONS GÉNÉRALES", styleHeading)
	for _, article := range Classify(typeName).Articles() {
		d.l.Paragraph(article.Title, styleLabel)
		d.l.Paragraph(article.Body, styleBody)
		d.l.Space(4)
	}
}

func (d *document) signatureBlock() {
	d.l.Rule()
	d.l.Paragraph("SIGNATURE ÉLECTRONIQUE", styleHeading)
	if d.c.SignedAt == nil {
		d.l.Paragraph("Document en attente de signature.", styleBody)
		d.l.Space(6)
		d.l.Paragraph("Signature du client, précédée de la mention « Lu et approuvé » :", styleBody)
		d.l.Space(40)
		return
	}
	signer := ""
	if d.c.Customer != nil {
		signer = strings.TrimSpace(d.c.Customer.Firstname + " " + d.c.Customer.Lastname)
	}
	d.l.LabelValue("Signataire :", signer)
	d.l.LabelValue("Date de signature :", contractdata.FormatDateTime(*d.c.SignedAt, d.opts.Location))
	d.l.LabelValue("Adresse IP :", d.c.SignatureIP)
	d.l.LabelValue("Localisation :", d.c.SignatureLocation)
	d.l.LabelValue("Référence :", d.c.SignatureReference)
	d.l.Space(6)
	d.l.Paragraph(SignatureDisclaimer, styleSmall)
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
