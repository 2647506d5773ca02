package usecase

import "github.com/user/erp-api/internal/domain"

// DefaultCategory is one entry of the tenant-onboarding catalog.
type DefaultCategory struct {
	Code       string
	Nom        string
	Icone      string
	TypeGlobal domain.CategoryType
}

// DefaultCategories is the fixed catalog seeded for every new tenant.
var DefaultCategories = []DefaultCategory{
	{Code: "DEP_TRANSPORT", Nom: "Transport & Déplacements", Icone: "🚗", TypeGlobal: domain.TypeExploitation},
	{Code: "DEP_FOURNITURES", Nom: "Fournitures de bureau", Icone: "🖊️", TypeGlobal: domain.TypeConsommable},
	{Code: "DEP_LOYER", Nom: "Loyer & Charges locatives", Icone: "🏢", TypeGlobal: domain.TypeExploitation},
	{Code: "DEP_SALAIRES", Nom: "Salaires & Charges sociales", Icone: "👥", TypeGlobal: domain.TypeExploitation},
	{Code: "DEP_MARKETING", Nom: "Marketing & Publicité", Icone: "📣", TypeGlobal: domain.TypeExploitation},
	{Code: "DEP_HONORAIRES", Nom: "Honoraires & Conseils", Icone: "⚖️", TypeGlobal: domain.TypeExploitation},
	{Code: "DEP_ASSURANCES", Nom: "Assurances", Icone: "🛡️", TypeGlobal: domain.TypeExploitation},
	{Code: "DEP_TELECOM", Nom: "Téléphonie & Internet", Icone: "📞", TypeGlobal: domain.TypeExploitation},
	{Code: "DEP_BANQUE", Nom: "Frais bancaires", Icone: "🏦", TypeGlobal: domain.TypeFinancier},
	{Code: "DEP_MATERIEL", Nom: "Matériel & Équipements", Icone: "💻", TypeGlobal: domain.TypeInvestissement},
}
