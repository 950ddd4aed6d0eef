package review

import (
	"net/http"

	"github.com/airenas/listreview/internal/pkg/cmdapp"
)

type listNotificationsHandler struct {
	data *ServiceData
}

func (h listNotificationsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "userId is required")
		return
	}
	res, err := h.data.Notifications.ListFor(r.Context(), userID)
	if err != nil {
		writeCoreError(w, err, "Can't get notifications")
		return
	}
	writeOK(w, http.StatusOK, res)
}

type markReadHandler struct {
	data *ServiceData
}

func (h markReadHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var in struct {
		NotificationID string `json:"notificationId"`
	}
	if err := decode(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "Can't decode input")
		cmdapp.Log.Error(err)
		return
	}
	if in.NotificationID == "" {
		writeError(w, http.StatusBadRequest, "notificationId is required")
		return
	}
	ok, err := h.data.Notifications.MarkRead(r.Context(), in.NotificationID)
	if err != nil {
		writeCoreError(w, err, "Failed to update notification")
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "Notification not found")
		return
	}
	writeJSON(w, http.StatusOK, &response{Success: true})
}
