package certs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"evently/db"
	"evently/models"
	"evently/mq"
	"evently/utils"

	"github.com/julienschmidt/httprouter"
	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// IssueCertificate handles POST /api/certificates/issue.
func IssueCertificate(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req struct {
		RegistrationID string `json:"registrationId"`
		TemplateID     string `json:"templateId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithReason(w, http.StatusBadRequest, "VALIDATION", "Invalid request body")
		return
	}
	if req.RegistrationID == "" || req.TemplateID == "" {
		utils.RespondWithReason(w, http.StatusBadRequest, "VALIDATION", "registrationId and templateId are required")
		return
	}

	cert, err := Issue(r.Context(), req.RegistrationID, req.TemplateID)
	if err != nil {
		switch {
		case errors.Is(err, ErrRegistrationNotFound):
			utils.RespondWithReason(w, http.StatusNotFound, "NOT_FOUND", err.Error())
		case errors.Is(err, ErrTemplateNotFound):
			utils.RespondWithReason(w, http.StatusNotFound, "NOT_FOUND", err.Error())
		case errors.Is(err, ErrNotAttended), errors.Is(err, ErrAlreadyIssued):
			utils.RespondWithReason(w, http.StatusConflict, "STATE_CONFLICT", err.Error())
		default:
			log.Printf("IssueCertificate: %v", err)
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to issue certificate")
		}
		return
	}

	// Delivery is fire-and-forget; issuance has already succeeded.
	var reg models.Registration
	if err := db.RegistrationsCollection.FindOne(r.Context(), bson.M{"registrationid": cert.RegistrationID}).Decode(&reg); err == nil {
		mq.Emit(context.WithoutCancel(r.Context()), "certificate", reg.Email, cert.EventID, map[string]string{
			"certificateid":    cert.CertificateID,
			"verificationCode": cert.VerificationCode,
		})
	}

	utils.RespondWithJSON(w, http.StatusCreated, cert)
}

// GetMyCertificates lists the caller's certificates.
func GetMyCertificates(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID := utils.GetUserIDFromRequest(r)
	opts := utils.ParseQueryOptions(r)

	findOptions := options.Find().
		SetSort(bson.M{"issuedat": -1}).
		SetSkip(int64((opts.Page - 1) * opts.Limit)).
		SetLimit(int64(opts.Limit))

	cursor, err := db.CertificatesCollection.Find(r.Context(), bson.M{"userid": userID}, findOptions)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch certificates")
		return
	}
	defer cursor.Close(r.Context())

	certificates := []models.Certificate{}
	if err := cursor.All(r.Context(), &certificates); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to decode certificates")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, certificates)
}

func findCertificate(ctx context.Context, certificateID string) (models.Certificate, error) {
	var cert models.Certificate
	err := db.CertificatesCollection.FindOne(ctx, bson.M{"certificateid": certificateID}).Decode(&cert)
	return cert, err
}

// GetCertificate returns one certificate with its rendered HTML, for the
// owner or an admin.
func GetCertificate(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	cert, err := findCertificate(r.Context(), ps.ByName("certificateid"))
	if errors.Is(err, mongo.ErrNoDocuments) {
		utils.RespondWithReason(w, http.StatusNotFound, "NOT_FOUND", "Certificate not found")
		return
	}
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch certificate")
		return
	}
	if cert.UserID != utils.GetUserIDFromRequest(r) && !utils.IsAdmin(r) {
		utils.RespondWithReason(w, http.StatusForbidden, "AUTH", "Not your certificate")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, cert)
}

// VerifyCertificate is the public lookup by verification code. Revoked and
// expired certificates report their status rather than 404, so a revoked
// certificate cannot pass itself off as missing-but-plausible.
func VerifyCertificate(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var cert models.Certificate
	err := db.CertificatesCollection.FindOne(r.Context(), bson.M{
		"verificationcode": ps.ByName("code"),
	}).Decode(&cert)
	if errors.Is(err, mongo.ErrNoDocuments) {
		utils.RespondWithReason(w, http.StatusNotFound, "NOT_FOUND", "No certificate matches this code")
		return
	}
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to verify certificate")
		return
	}

	var event models.Event
	_ = db.EventsCollection.FindOne(r.Context(), bson.M{"eventid": cert.EventID}).Decode(&event)

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"valid":         cert.Status == models.CertIssued,
		"status":        cert.Status,
		"certificateid": cert.CertificateID,
		"eventTitle":    event.Title,
		"issuedAt":      cert.IssuedAt,
	})
}

// DownloadCertificatePDF renders the certificate as a PDF with an embedded
// verification QR.
func DownloadCertificatePDF(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	cert, err := findCertificate(r.Context(), ps.ByName("certificateid"))
	if errors.Is(err, mongo.ErrNoDocuments) {
		utils.RespondWithReason(w, http.StatusNotFound, "NOT_FOUND", "Certificate not found")
		return
	}
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch certificate")
		return
	}
	if cert.UserID != utils.GetUserIDFromRequest(r) && !utils.IsAdmin(r) {
		utils.RespondWithReason(w, http.StatusForbidden, "AUTH", "Not your certificate")
		return
	}

	var reg models.Registration
	_ = db.RegistrationsCollection.FindOne(r.Context(), bson.M{"registrationid": cert.RegistrationID}).Decode(&reg)
	var event models.Event
	_ = db.EventsCollection.FindOne(r.Context(), bson.M{"eventid": cert.EventID}).Decode(&event)

	qrPNG, err := qrcode.Encode(cert.VerificationCode, qrcode.Medium, 256)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to generate QR code")
		return
	}

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 28)
	pdf.CellFormat(0, 30, "Certificate of Participation", "", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "", 16)
	pdf.CellFormat(0, 12, "This certifies that", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "B", 22)
	pdf.CellFormat(0, 14, reg.Name, "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 16)
	pdf.CellFormat(0, 12, "attended "+event.Title, "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 10, event.StartDate.Format("January 2, 2006"), "", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 18, "Certificate ID: "+cert.CertificateID+"  |  Verification code: "+cert.VerificationCode, "", 1, "C", false, 0, "")

	imageOpts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", imageOpts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("qr", 250, 160, 30, 30, false, imageOpts, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to generate PDF")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=certificate-"+cert.CertificateID+".pdf")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// RevokeCertificate is a one-way status flip, admin only.
func RevokeCertificate(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	res, err := db.CertificatesCollection.UpdateOne(r.Context(),
		bson.M{"certificateid": ps.ByName("certificateid"), "status": models.CertIssued},
		bson.M{"$set": bson.M{"status": models.CertRevoked, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to revoke certificate")
		return
	}
	if res.ModifiedCount == 0 {
		utils.RespondWithReason(w, http.StatusConflict, "STATE_CONFLICT", "Certificate is not in issued status")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true})
}
