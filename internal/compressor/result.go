package compressor

import (
	"encoding/json"
	"net/http"

	"github.com/aws/aws-lambda-go/events"

	"github.com/fpang/image-compressor/internal/event"
	"github.com/fpang/image-compressor/internal/s3util"
)

// S3 Batch Operations result codes. TemporaryFailure is part of the schema
// but the handler never retries, so every failure is reported as permanent.
const (
	ResultSucceeded        = "Succeeded"
	ResultTemporaryFailure = "TemporaryFailure"
	ResultPermanentFailure = "PermanentFailure"
)

const defaultSchemaVersion = "1.0"

// DirectResponse is returned to direct invocations.
type DirectResponse struct {
	StatusCode int    `json:"statusCode"`
	Body       string `json:"body"`
}

type errorBody struct {
	Error string `json:"error"`
}

// formatSuccess shapes a completed upload for the invocation style used.
func formatSuccess(inv *event.Invocation, put *s3util.PutResult) any {
	body, err := json.Marshal(put)
	if err != nil {
		return formatFailure(inv, err)
	}
	if inv.Kind == event.KindBatch {
		return batchResponse(inv.Batch, ResultSucceeded, string(body))
	}
	return DirectResponse{StatusCode: http.StatusOK, Body: string(body)}
}

// formatFailure shapes err for the invocation style used.
func formatFailure(inv *event.Invocation, err error) any {
	if inv != nil && inv.Kind == event.KindBatch {
		return batchResponse(inv.Batch, ResultPermanentFailure, err.Error())
	}
	body, _ := json.Marshal(errorBody{Error: err.Error()})
	return DirectResponse{StatusCode: http.StatusInternalServerError, Body: string(body)}
}

// batchResponse builds a response carrying exactly one task result.
func batchResponse(meta *event.BatchMeta, code, message string) events.S3BatchJobResponse {
	if meta == nil {
		meta = &event.BatchMeta{}
	}
	version := meta.InvocationSchemaVersion
	if version == "" {
		version = defaultSchemaVersion
	}
	return events.S3BatchJobResponse{
		InvocationSchemaVersion: version,
		TreatMissingKeysAs:      ResultPermanentFailure,
		InvocationID:            meta.InvocationID,
		Results: []events.S3BatchJobResult{{
			TaskID:       meta.TaskID,
			ResultCode:   code,
			ResultString: message,
		}},
	}
}
