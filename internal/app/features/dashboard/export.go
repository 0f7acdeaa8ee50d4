// internal/app/features/dashboard/export.go
package dashboard

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/dalemusser/regdash/internal/app/store/registrants"
	"github.com/dalemusser/regdash/internal/app/system/auth"
	"github.com/dalemusser/regdash/internal/app/system/timeouts"
	"github.com/dalemusser/regdash/internal/app/system/xlsxexport"
	"github.com/dalemusser/regdash/internal/domain/models"
	"go.uber.org/zap"
)

// ExportCountHeader tells the page script how many rows were exported.
const ExportCountHeader = "X-Export-Count"

// MsgExportDone is the success alert; %d is the row count.
const MsgExportDone = "Excel fayl muvaffaqiyatli yuklandi! (%d ta foydalanuvchi)"

/*─────────────────────────────────────────────────────────────────────────────*
| GET /admin/dashboard/export.xlsx                                            |
*─────────────────────────────────────────────────────────────────────────────*/

// ServeExport streams every registrant (optionally one course) as xlsx.
// The workbook is built in memory first so a failed fetch never produces a
// truncated download.
func (h *Handler) ServeExport(w http.ResponseWriter, r *http.Request) {
	course := h.course(r)
	login := ""
	if u, ok := auth.CurrentUser(r); ok {
		login = u.Login
	}

	if h.opt.ExportURL != "" {
		h.Audit.ExportDownloaded(r.Context(), r, login, string(course), 0)
		http.Redirect(w, r, h.opt.ExportURL, http.StatusSeeOther)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Export(), h.Log, "registrant export")
	defer cancel()

	users, err := h.Users.All(ctx, course)
	if err != nil {
		h.exportFailed(w, r, login, course, "fetch failed", err)
		return
	}

	var buf bytes.Buffer
	n, err := xlsxexport.Write(&buf, users, xlsxexport.Options{
		Location:      h.opt.Location,
		IncludeCourse: !h.opt.HideCourse && course.IsAll(),
		CourseNames:   h.opt.Courses,
	})
	if err != nil {
		h.exportFailed(w, r, login, course, "xlsx build failed", err)
		return
	}

	scope := ""
	if !course.IsAll() {
		scope = h.opt.Courses.Name(course)
	}
	name := xlsxexport.Filename(scope, h.now().In(h.opt.Location))

	w.Header().Set("Content-Type", xlsxexport.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set(ExportCountHeader, strconv.Itoa(n))
	if _, err := buf.WriteTo(w); err != nil {
		h.Log.Warn("export write interrupted", zap.Error(err))
		return
	}

	h.Audit.ExportDownloaded(r.Context(), r, login, string(course), n)
	h.Log.Info("registrants exported",
		zap.String("course", string(course)),
		zap.Int("rows", n),
		zap.String("file", name))
}

func (h *Handler) exportFailed(w http.ResponseWriter, r *http.Request, login string, course models.Course, reason string, err error) {
	h.Log.Error("registrant export failed",
		zap.String("reason", reason),
		zap.String("course", string(course)),
		zap.Error(err))
	h.Audit.ExportFailed(r.Context(), r, login, string(course), reason)

	msg := registrants.UserMessage(err, registrants.MsgExportFailed)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusBadGateway)
	_, _ = w.Write([]byte(msg))
}
