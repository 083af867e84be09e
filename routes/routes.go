package routes

import (
	"evently/certs"
	"evently/coupons"
	"evently/events"
	"evently/middleware"
	"evently/pay"
	"evently/ratelim"
	"evently/register"

	"github.com/julienschmidt/httprouter"
)

func AddEventRoutes(router *httprouter.Router) {
	router.GET("/api/events", ratelim.RateLimit(middleware.OptionalAuth(events.GetEvents)))
	router.GET("/api/events/:eventid", ratelim.RateLimit(middleware.OptionalAuth(events.GetEvent)))
	router.POST("/api/events", ratelim.RateLimit(middleware.Authenticate(events.CreateEvent)))
	router.PUT("/api/events/:eventid", middleware.Authenticate(events.EditEvent))
	router.POST("/api/events/:eventid/publish", middleware.Authenticate(events.PublishEvent))
	router.POST("/api/events/:eventid/cancel", middleware.Authenticate(events.CancelEvent))
	router.DELETE("/api/events/:eventid", middleware.Authenticate(events.DeleteEvent))
}

func AddCouponRoutes(router *httprouter.Router) {
	router.POST("/api/coupons", middleware.Authenticate(middleware.RequireRole("admin", coupons.CreateCoupon)))
	router.GET("/api/coupons", middleware.Authenticate(middleware.RequireRole("admin", coupons.GetCoupons)))
	router.GET("/api/coupons/:code", middleware.Authenticate(middleware.RequireRole("admin", coupons.GetCoupon)))
	router.PUT("/api/coupons/:code", middleware.Authenticate(middleware.RequireRole("admin", coupons.UpdateCoupon)))
	router.DELETE("/api/coupons/:code", middleware.Authenticate(middleware.RequireRole("admin", coupons.DeleteCoupon)))

	// Preview validates and prices a coupon without consuming it.
	router.POST("/api/coupon-preview", ratelim.RateLimit(middleware.Authenticate(coupons.PreviewCoupon)))
}

func AddRegistrationRoutes(router *httprouter.Router, h *register.Handlers) {
	router.POST("/api/events/:eventid/register", ratelim.RateLimit(middleware.Authenticate(pay.Idempotent(h.RegisterForEvent))))
	router.GET("/api/me/registrations", middleware.Authenticate(register.GetMyRegistrations))
	router.GET("/api/events/:eventid/registrations", middleware.Authenticate(register.GetEventRegistrations))
	router.GET("/api/registrations/:registrationid/qr", ratelim.RateLimit(middleware.Authenticate(register.GetRegistrationQR)))
	router.POST("/api/registrations/:registrationid/cancel", middleware.Authenticate(register.CancelRegistration))

	router.POST("/api/events/:eventid/checkin", ratelim.RateLimit(middleware.Authenticate(register.CheckIn)))
	router.GET("/api/events/:eventid/checkin/feed", register.CheckinFeed)
}

func AddPaymentRoutes(router *httprouter.Router, svc *pay.Service) {
	router.POST("/api/payments/verify", ratelim.RateLimit(middleware.Authenticate(pay.Idempotent(svc.VerifyPayment))))
	router.POST("/api/payments/refund/:paymentid", middleware.Authenticate(middleware.RequireRole("admin", pay.Idempotent(svc.RefundPayment))))
	router.GET("/api/me/payments", middleware.Authenticate(svc.GetMyPayments))
}

func AddCertificateRoutes(router *httprouter.Router) {
	router.POST("/api/certificates", middleware.Authenticate(middleware.RequireRole("admin", certs.IssueCertificate)))
	router.GET("/api/me/certificates", middleware.Authenticate(certs.GetMyCertificates))
	router.GET("/api/certificates/:certificateid", middleware.Authenticate(certs.GetCertificate))
	router.GET("/api/certificates/:certificateid/pdf", middleware.Authenticate(certs.DownloadCertificatePDF))
	router.POST("/api/certificates/:certificateid/revoke", middleware.Authenticate(middleware.RequireRole("admin", certs.RevokeCertificate)))

	// Public verification, no auth.
	router.GET("/api/verify-certificate/:code", ratelim.RateLimit(certs.VerifyCertificate))

	router.POST("/api/certificate-templates", middleware.Authenticate(middleware.RequireRole("admin", certs.CreateTemplate)))
	router.GET("/api/certificate-templates", middleware.Authenticate(middleware.RequireRole("admin", certs.GetTemplates)))
	router.GET("/api/certificate-templates/:templateid", middleware.Authenticate(middleware.RequireRole("admin", certs.GetTemplate)))
	router.PUT("/api/certificate-templates/:templateid", middleware.Authenticate(middleware.RequireRole("admin", certs.UpdateTemplate)))
	router.DELETE("/api/certificate-templates/:templateid", middleware.Authenticate(middleware.RequireRole("admin", certs.DeleteTemplate)))
}
