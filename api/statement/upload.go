package statement

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"CommissionFlow/api"
	"CommissionFlow/api/constants"
)

// ObjectPutter is the slice of the S3 client the upload handler needs.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// UploadStatement receives a commission statement PDF, stores it under the
// uploads/ prefix and creates the document record. The generated storage key
// is the reference the extraction pipeline will call back with, so it is the
// one value later webhooks are cross-checked against.
func UploadStatement(store DocumentStore, s3c ObjectPutter, bucket string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			api.RespondWithCode(w, http.StatusBadRequest, constants.CodeInvalidPayload, "Failed to parse multipart form")
			return
		}
		carrierID := strings.TrimSpace(r.FormValue("carrier_id"))
		if carrierID == "" {
			api.RespondWithCode(w, http.StatusBadRequest, constants.CodeInvalidPayload, constants.ErrCarrierRequired)
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			api.RespondWithCode(w, http.StatusBadRequest, constants.CodeInvalidPayload, constants.ErrNoFileUploaded)
			return
		}
		defer file.Close()
		if strings.ToLower(filepath.Ext(header.Filename)) != ".pdf" {
			api.RespondWithCode(w, http.StatusBadRequest, constants.CodeInvalidPayload, constants.ErrUnsupportedUpload)
			return
		}

		storageRef := fmt.Sprintf("uploads/carrier-%s/%s/%s", carrierID, uuid.New().String(), header.Filename)
		_, err = s3c.PutObject(r.Context(), &s3.PutObjectInput{
			Bucket:      aws.String(bucket),
			Key:         aws.String(storageRef),
			Body:        file,
			ContentType: aws.String("application/pdf"),
		})
		if err != nil {
			api.LogError("s3 put %s: %v", storageRef, err)
			api.RespondWithCode(w, http.StatusInternalServerError, constants.CodeInternal, constants.ErrS3Upload)
			return
		}

		doc := &Document{
			CarrierID:  carrierID,
			FileName:   header.Filename,
			StorageRef: storageRef,
			Status:     StatusUploaded,
		}
		if err := store.Create(r.Context(), doc); err != nil {
			api.RespondWithCode(w, http.StatusInternalServerError, constants.CodeInternal, err.Error())
			return
		}

		// The S3 put is what kicks off the extraction pipeline, so the row
		// moves straight on to processing.
		doc, err = store.Mutate(r.Context(), doc.ID, func(d *Document) error {
			d.Status = StatusProcessing
			return nil
		})
		if err != nil {
			respondError(w, err)
			return
		}

		api.LogInfo("uploaded statement %s as document %d", storageRef, doc.ID)
		api.RespondWithPayload(w, http.StatusCreated, map[string]interface{}{
			"document_id": doc.ID,
			"storage_ref": doc.StorageRef,
			"status":      doc.Status,
		})
	}
}
