package handlers

import (
	"context"
	"net/http"
	"time"

	qrcode "github.com/skip2/go-qrcode"
)

func (a *API) CrisisResources(w http.ResponseWriter, r *http.Request) {
	userID := a.userID(r)

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	region := r.URL.Query().Get("region")
	if region == "" {
		region = a.userRegion(ctx, userID)
	}
	resources := a.Escalation.ResourcesFor(region)
	writeJSON(w, http.StatusOK, map[string]any{
		"region":    region,
		"resources": resources,
	})
}

// CrisisResourcesQR renders the regional crisis chat link as a QR code so
// the frontend can show a scannable card.
func (a *API) CrisisResourcesQR(w http.ResponseWriter, r *http.Request) {
	userID := a.userID(r)

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	region := r.URL.Query().Get("region")
	if region == "" {
		region = a.userRegion(ctx, userID)
	}
	resources := a.Escalation.ResourcesFor(region)

	target := resources.Chat
	if target == "" {
		target = "tel:" + resources.Phone
	}

	png, err := qrcode.Encode(target, qrcode.Medium, 256)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to render QR code")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}
