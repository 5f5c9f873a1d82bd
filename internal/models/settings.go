package models

// DisplaySettings pilote l'encart "Vos récompenses" affiché au client
// sur la page de détail de commande
type DisplaySettings struct {
	Title       string `json:"template_title"`
	Message     string `json:"template_message"`
	BgColor     string `json:"template_bg_color"`
	BorderColor string `json:"template_border_color"`
	TextColor   string `json:"template_text_color"`
	CodeColor   string `json:"template_code_color"`
}

func DefaultDisplaySettings() DisplaySettings {
	return DisplaySettings{
		Title:       "🎁 Your Rewards",
		Message:     "Thanks for your order. Use this code:",
		BgColor:     "#fef2f2",
		BorderColor: "#fecaca",
		TextColor:   "#991b1b",
		CodeColor:   "#dc2626",
	}
}
