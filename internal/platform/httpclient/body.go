package httpclient

import (
	"compress/flate"
	"compress/gzip"
	"io"
	"net/http"
	"strings"

	"github.com/andybalholm/brotli"

	"pricescout/internal/platform/errors"
)

// DefaultMaxBodyBytes caps bodies read through ReadBody.
const DefaultMaxBodyBytes int64 = 5 * 1024 * 1024

// AcceptEncoding is sent by callers that decode bodies with ReadBodyLimit.
// Setting it disables the transport's transparent gzip handling.
const AcceptEncoding = "gzip, deflate, br"

// ReadBody reads and closes the response body using the default cap.
func ReadBody(resp *http.Response) ([]byte, error) {
	return ReadBodyLimit(resp, DefaultMaxBodyBytes)
}

// ReadBodyLimit reads and closes the body, decoding gzip, deflate and brotli
// content encodings. Bodies larger than max fail with errors.ErrBodyTooLarge.
func ReadBodyLimit(resp *http.Response, max int64) ([]byte, error) {
	if resp == nil || resp.Body == nil {
		return nil, errors.New("response is nil")
	}
	if max <= 0 {
		max = DefaultMaxBodyBytes
	}

	reader := io.Reader(resp.Body)
	closers := []io.Closer{resp.Body}

	switch strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding"))) {
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			_ = resp.Body.Close()
			return nil, errors.Wrap(err, "gzip decode")
		}
		reader = gz
		closers = append(closers, gz)
	case "br":
		reader = brotli.NewReader(resp.Body)
	case "deflate":
		fl := flate.NewReader(resp.Body)
		reader = fl
		closers = append(closers, fl)
	}

	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			_ = closers[i].Close()
		}
	}()

	body, err := io.ReadAll(io.LimitReader(reader, max+1))
	if err != nil {
		return nil, errors.Wrap(err, "read body")
	}
	if int64(len(body)) > max {
		return nil, errors.Wrapf(errors.ErrBodyTooLarge, "limit %d bytes", max)
	}
	return body, nil
}
