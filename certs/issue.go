package certs

import (
	"context"
	"errors"
	"log"
	"time"

	"evently/db"
	"evently/events"
	"evently/models"
	"evently/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrRegistrationNotFound = errors.New("registration not found")
	ErrNotAttended          = errors.New("registration is not marked attended")
	ErrAlreadyIssued        = errors.New("certificate already issued for this registration")
	ErrTemplateNotFound     = errors.New("certificate template not found or inactive")
)

// Issue renders a certificate for an attended registration from the given
// template and persists it. The unique index on registrationid is what makes
// the one-certificate-per-registration rule hold under concurrent calls; the
// registration-flag update afterwards is idempotent and re-driven by the
// reconciliation sweep if it fails.
func Issue(ctx context.Context, registrationID, templateID string) (models.Certificate, error) {
	var reg models.Registration
	err := db.RegistrationsCollection.FindOne(ctx, bson.M{"registrationid": registrationID}).Decode(&reg)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Certificate{}, ErrRegistrationNotFound
	}
	if err != nil {
		return models.Certificate{}, err
	}

	if reg.Attendance != models.AttendanceAttended {
		return models.Certificate{}, ErrNotAttended
	}
	if reg.CertificateIssued {
		return models.Certificate{}, ErrAlreadyIssued
	}

	var tmpl models.CertTemplate
	err = db.TemplatesCollection.FindOne(ctx, bson.M{"templateid": templateID, "active": true}).Decode(&tmpl)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Certificate{}, ErrTemplateNotFound
	}
	if err != nil {
		return models.Certificate{}, err
	}

	event, err := events.FindByID(ctx, reg.EventID)
	if err != nil {
		return models.Certificate{}, err
	}

	now := time.Now().UTC()
	cert := models.Certificate{
		CertificateID:    "CERT-" + utils.GenerateID(12),
		EventID:          reg.EventID,
		UserID:           reg.UserID,
		RegistrationID:   reg.RegistrationID,
		TemplateID:       tmpl.TemplateID,
		VerificationCode: utils.GenerateSecureID(16),
		Status:           models.CertIssued,
		IssuedAt:         now,
		UpdatedAt:        now,
	}
	cert.RenderedHTML = Render(tmpl.HTMLContent, MergeData(reg, event, cert))

	if _, err := db.CertificatesCollection.InsertOne(ctx, cert); err != nil {
		if db.IsDuplicateKeyError(err) {
			return models.Certificate{}, ErrAlreadyIssued
		}
		return models.Certificate{}, err
	}

	if err := markRegistration(ctx, cert); err != nil {
		// The certificate exists; the flag catches up via ReconcileFlags.
		log.Printf("Issue: registration flag update failed for %s: %v", reg.RegistrationID, err)
	}

	return cert, nil
}

func markRegistration(ctx context.Context, cert models.Certificate) error {
	_, err := db.RegistrationsCollection.UpdateOne(ctx,
		bson.M{"registrationid": cert.RegistrationID},
		bson.M{"$set": bson.M{
			"certificateissued": true,
			"certificateid":     cert.CertificateID,
			"updated_at":        time.Now().UTC(),
		}},
	)
	return err
}

// ReconcileFlags re-drives registration certificate flags for certificates
// whose second write was lost. Run from the background sweep.
func ReconcileFlags(ctx context.Context) error {
	cursor, err := db.CertificatesCollection.Find(ctx, bson.M{"status": models.CertIssued})
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var cert models.Certificate
		if err := cursor.Decode(&cert); err != nil {
			continue
		}
		res, err := db.RegistrationsCollection.UpdateOne(ctx,
			bson.M{"registrationid": cert.RegistrationID, "certificateissued": false},
			bson.M{"$set": bson.M{
				"certificateissued": true,
				"certificateid":     cert.CertificateID,
				"updated_at":        time.Now().UTC(),
			}},
		)
		if err != nil {
			return err
		}
		if res.ModifiedCount > 0 {
			log.Printf("ReconcileFlags: repaired registration %s", cert.RegistrationID)
		}
	}
	return cursor.Err()
}
