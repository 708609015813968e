package backend

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"
)

type soapFault struct {
	FaultCode   string `xml:"faultcode"`
	FaultString string `xml:"faultstring"`
}

// soapResponse lets the shared transport see a decoded fault regardless of
// the concrete response envelope type.
type soapResponse interface {
	fault() *soapFault
}

// soapCall posts a SOAP envelope and decodes the reply into out, recording
// the raw exchange in diag. It returns a non-empty diagnostic message on
// any transport or decode failure; callers fold that straight into the
// error envelope. A decoded fault is not reported here; the caller reads
// it off the response for a message with domain context.
func soapCall(ctx context.Context, httpClient *http.Client, logger *zap.Logger,
	endpoint, action string, in any, out soapResponse, diag *Diagnostics) string {

	payload, err := xml.MarshalIndent(in, "", "  ")
	if err != nil {
		return fmt.Sprintf("failed to build request: %v", err)
	}
	body := append([]byte(xml.Header), payload...)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Sprintf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "text/xml; charset=utf-8")
	req.Header.Set("SOAPAction", action)

	*diag = Diagnostics{URL: endpoint, RequestBody: string(body)}

	resp, err := httpClient.Do(req)
	if err != nil {
		logger.Warn("soap request failed", zap.String("action", action), zap.Error(err))
		return fmt.Sprintf("request failed: %v", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Sprintf("failed to read response: %v", err)
	}
	diag.Status = resp.StatusCode
	diag.ContentType = resp.Header.Get("Content-Type")
	diag.ResponseBody = string(respBody)

	if err := xml.Unmarshal(respBody, out); err != nil {
		return fmt.Sprintf("failed to decode response (status %d, content-type: %s): %v. First %d chars: %s",
			resp.StatusCode, diag.ContentType, err, bodySnippetLen, snippetOf(respBody))
	}
	// SOAP faults ride on non-2xx statuses. When the body decoded into a
	// fault, the fault message is the useful diagnostic; only fail on the
	// status itself when nothing decoded.
	if (resp.StatusCode < 200 || resp.StatusCode > 299) && out.fault() == nil {
		return fmt.Sprintf("unexpected status %d. First %d chars: %s",
			resp.StatusCode, bodySnippetLen, snippetOf(respBody))
	}
	return ""
}

func snippetOf(body []byte) string {
	a := fetchAttempt{body: body}
	return a.snippet()
}
