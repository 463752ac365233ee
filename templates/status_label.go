// Package templates renders the public HTML views. Components are written
// in .templ files; run `templ generate` after editing them.
package templates

import "eventquotes/services"

var statusLabels = map[services.QuoteStatus]string{
	services.StatusDraft:    "Borrador",
	services.StatusSent:     "Enviada",
	services.StatusAccepted: "Aceptada",
	services.StatusRejected: "Rechazada",
	services.StatusExecuted: "Ejecutada",
	services.StatusExpired:  "Vencida",
}

func statusLabel(s services.QuoteStatus) string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}
