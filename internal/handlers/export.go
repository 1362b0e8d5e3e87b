package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/kez1254/budget-app/internal/export"
)

// ExportViewModel is the data for the nothing-to-export page.
type ExportViewModel struct {
	Message string
}

// Export streams the user's expenses as an xlsx download. When there
// is nothing to export an informational page is rendered instead and
// no file is offered.
func (h *Handlers) Export(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)

	rows, err := h.db.ExpensesForExport(user.ID)
	if err != nil {
		log.Printf("ExpensesForExport error: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	data, err := export.Expenses(rows)
	if err != nil {
		if errors.Is(err, export.ErrNoExpenses) {
			h.render(w, r, "export.html", ExportViewModel{Message: "No data to export."})
			return
		}
		log.Printf("Export error: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	if _, err := w.Write(data); err != nil {
		log.Printf("Export write error: %v", err)
	}
}
