package i18n

// Message keys used across the service.
const (
	KeyContactLocked       = "user.contact.locked"
	KeyContactRegarding    = "user.contact.regarding"
	KeyURLError401         = "core.url.error.401"
	KeyURLError404         = "core.url.error.404"
	KeyTemplateNotFound    = "page.error.template.notfound"
	KeySearchCommandIsMine = "core.searchcommand.ismine"
)

var builtinMessages = map[string]map[string]string{
	"en": {
		KeyContactLocked:       "Locked: %entityName% (#%entityId%)",
		KeyContactRegarding:    "Regarding: %entityName% (#%entityId%)",
		KeyURLError401:         "You do not have access to this page.",
		KeyURLError404:         "The requested page was not found.",
		KeyTemplateNotFound:    "The page template could not be found.",
		KeySearchCommandIsMine: "is:mine",
	},
	"fr": {
		KeyContactLocked:       "Verrouillé : %entityName% (n°%entityId%)",
		KeyContactRegarding:    "Concernant : %entityName% (n°%entityId%)",
		KeyURLError401:         "Vous n'avez pas accès à cette page.",
		KeyURLError404:         "La page demandée est introuvable.",
		KeyTemplateNotFound:    "Le modèle de page est introuvable.",
		KeySearchCommandIsMine: "est:moi",
	},
}
