package pdfgen

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ContractKind selects the document title and clause set.
type ContractKind int

const (
	KindRental ContractKind = iota
	KindServicePackage
	KindDailyPackage
)

// Classify derives the contract kind from the contract type's name.
// Matching ignores case and accents.
func Classify(contractTypeName string) ContractKind {
	name := foldName(contractTypeName)
	forfait := strings.Contains(name, "forfait")
	journalier := strings.Contains(name, "journalier")
	switch {
	case strings.Contains(name, "negafa") || (forfait && !journalier):
		return KindServicePackage
	case forfait && journalier:
		return KindDailyPackage
	default:
		return KindRental
	}
}

func foldName(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, name)
	if err != nil {
		folded = name
	}
	return strings.ToLower(folded)
}

func (k ContractKind) String() string {
	switch k {
	case KindServicePackage:
		return "service_package"
	case KindDailyPackage:
		return "daily_package"
	default:
		return "rental"
	}
}

func (k ContractKind) Title() string {
	switch k {
	case KindServicePackage:
		return "CONTRAT DE PRESTATION « NÉGAFA »"
	case KindDailyPackage:
		return "CONTRAT DE LOCATION FORFAIT JOURNALIER"
	default:
		return "CONTRAT DE LOCATION DE ROBES"
	}
}

type Article struct {
	Title string
	Body  string
}

func (k ContractKind) Articles() []Article {
	switch k {
	case KindServicePackage:
		return serviceArticles
	case KindDailyPackage:
		return dailyArticles
	default:
		return rentalArticles
	}
}

var serviceArticles = []Article{
	{
		Title: "Article 1 - Objet de la prestation",
		Body: "Le prestataire s'engage à assurer une prestation de négafa comprenant la mise à disposition des tenues " +
			"et accessoires désignés au présent contrat, l'habillage de la mariée et l'accompagnement lors des " +
			"changements de tenue le jour de l'événement.",
	},
	{
		Title: "Article 2 - Durée de la prestation",
		Body: "La prestation est limitée à sept (7) heures consécutives à compter de l'arrivée du prestataire sur le lieu " +
			"de l'événement. Toute heure commencée au-delà de cette durée sera facturée 150 € par heure supplémentaire.",
	},
	{
		Title: "Article 3 - Loge sécurisée",
		Body: "Le client met à la disposition du prestataire une loge fermant à clé, propre et éclairée, réservée aux " +
			"changements de tenue et au stockage des articles. Le prestataire décline toute responsabilité en cas de " +
			"vol ou de dégradation survenant dans un espace non sécurisé.",
	},
	{
		Title: "Article 4 - Acompte",
		Body: "La réservation de la date n'est effective qu'après versement d'un acompte correspondant à 50 % du montant " +
			"total de la prestation. Le solde est exigible au plus tard le jour de l'événement.",
	},
	{
		Title: "Article 5 - Caution",
		Body: "Une caution est remise au prestataire avant la prestation. Les frais de nettoyage exceptionnel, de " +
			"réparation ou de remplacement des articles tachés, abîmés ou perdus seront déduits de la caution, qui est " +
			"restituée, déduction faite de ces frais, après vérification des articles.",
	},
	{
		Title: "Article 6 - Substitution",
		Body: "Si un article réservé devient indisponible pour une raison indépendante de la volonté du prestataire, " +
			"celui-ci pourra le remplacer par un article équivalent en valeur et en style, sans que cette substitution " +
			"ouvre droit à indemnité.",
	},
	{
		Title: "Article 7 - Annulation",
		Body: "Toute annulation du fait du client, quelle qu'en soit la cause, entraîne la perte définitive de l'acompte " +
			"versé.",
	},
	{
		Title: "Article 8 - Responsabilité",
		Body: "Les tenues et accessoires restent sous la garde du client et de ses invités pendant toute la durée de la " +
			"prestation. Toute dégradation constatée engage la responsabilité du client.",
	},
	{
		Title: "Article 9 - Signature électronique",
		Body: "Le client consent à signer le présent contrat par voie électronique et reconnaît que cette signature a " +
			"la même valeur juridique qu'une signature manuscrite, conformément aux articles 1366 et 1367 du Code civil.",
	},
}

var dailyArticles = []Article{
	{
		Title: "Article 1 - Acompte et caution",
		Body: "La réservation est confirmée par le versement de l'acompte. Une caution est remise lors du retrait des " +
			"articles et restituée à leur retour, sous réserve de leur bon état.",
	},
	{
		Title: "Article 2 - Annulation",
		Body: "Toute réservation est ferme et définitive. En cas d'annulation par le client, l'acompte reste acquis au loueur.",
	},
	{
		Title: "Article 3 - Responsabilité",
		Body: "Le client est responsable des articles loués depuis leur retrait jusqu'à leur restitution. Toute " +
			"dégradation, tache ou perte sera facturée et pourra être déduite de la caution.",
	},
	{
		Title: "Article 4 - Restitution",
		Body: "Les articles sont restitués le dimanche suivant l'événement, aux horaires convenus avec le loueur.",
	},
	{
		Title: "Article 5 - Pénalités de retard",
		Body: "Tout retard de restitution entraîne une pénalité de 50 € par jour et par robe d'invitée, et de 100 € " +
			"par jour et par robe de mariée.",
	},
	{
		Title: "Article 6 - Substitution",
		Body: "En cas d'indisponibilité d'un article réservé, le loueur pourra le remplacer par un article de valeur " +
			"équivalente.",
	},
	{
		Title: "Article 7 - Housse et cintre",
		Body: "Les housses et cintres fournis avec les robes doivent être restitués. À défaut, une indemnité forfaitaire " +
			"de 50 € sera retenue.",
	},
	{
		Title: "Article 8 - Acceptation",
		Body: "La signature du présent contrat vaut acceptation sans réserve des présentes conditions.",
	},
}

var rentalArticles = []Article{
	{
		Title: "Article 1 - Objet",
		Body: "Le présent contrat a pour objet la location des robes et accessoires désignés ci-dessus pour la période " +
			"indiquée.",
	},
	{
		Title: "Article 2 - État de restitution",
		Body: "Les articles doivent être restitués dans l'état où ils ont été remis, propres et sans dégradation. Les " +
			"frais de remise en état seront à la charge du client.",
	},
	{
		Title: "Article 3 - Pénalités de retard",
		Body: "Tout retard de restitution entraîne une pénalité de 50 € par jour et par robe d'invitée, et de 100 € " +
			"par jour et par robe de mariée.",
	},
	{
		Title: "Article 4 - Caution et responsabilité",
		Body: "La caution garantit la bonne restitution des articles. Le client demeure responsable de toute perte ou " +
			"détérioration, y compris au-delà du montant de la caution.",
	},
	{
		Title: "Article 5 - Acceptation",
		Body: "La signature du présent contrat vaut acceptation sans réserve des présentes conditions.",
	},
}
