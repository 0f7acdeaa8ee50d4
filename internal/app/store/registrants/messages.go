package registrants

import "errors"

// User-facing messages for failed backend calls.
const (
	MsgTimeout        = "So'rov vaqti tugadi. Iltimos, qayta urinib ko'ring."
	MsgSlowConnection = "Internet aloqasi sekin. Iltimos, qayta urinib ko'ring."
	MsgListFailed     = "Foydalanuvchilarni yuklashda xatolik yuz berdi. Iltimos, qayta urinib ko'ring."
	MsgStatsFailed    = "Statistika ma'lumotlarini yuklashda xatolik yuz berdi"
	MsgExportFailed   = "Excel faylni yuklashda xatolik yuz berdi. Iltimos, qayta urinib ko'ring."
)

// UserMessage maps err to the message shown to the admin. Timeouts get
// their own wording; everything else gets fallback.
func UserMessage(err error, fallback string) string {
	switch {
	case errors.Is(err, ErrTimeout):
		return MsgTimeout
	case errors.Is(err, ErrSlowConnection):
		return MsgSlowConnection
	default:
		return fallback
	}
}
