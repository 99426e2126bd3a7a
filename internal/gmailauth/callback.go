package gmailauth

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"
)

// ErrRedirectTimeout means no OAuth redirect arrived before the deadline
var ErrRedirectTimeout = errors.New("authorization timeout exceeded")

const successPage = `<html>
	<body>
		<h2>Gmail connected</h2>
		<p>You can close this window and return to Elva.</p>
	</body>
</html>`

const errorPage = `<html>
	<body>
		<h2>Gmail authentication failed</h2>
		<p>Return to Elva for details, or try connecting again.</p>
	</body>
</html>`

// AwaitRedirect runs a one-shot loopback HTTP listener on addr and blocks
// until the OAuth redirect lands, the timeout expires, or ctx is cancelled.
// The backend (or Google, on the raw-code path) redirects the browser here
// after the consent screen.
func AwaitRedirect(ctx context.Context, addr string, timeout time.Duration) (RedirectResult, error) {
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return RedirectResult{}, fmt.Errorf("start callback listener: %w", err)
	}

	resultChan := make(chan RedirectResult, 1)
	errorChan := make(chan error, 1)

	server := &http.Server{
		Handler: redirectHandler(resultChan),
	}

	go func() {
		if serr := server.Serve(ln); serr != nil && serr != http.ErrServerClosed {
			errorChan <- serr
		}
	}()

	shutdown := func() {
		sctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = server.Shutdown(sctx)
	}

	select {
	case res := <-resultChan:
		shutdown()
		return res, nil
	case serr := <-errorChan:
		shutdown()
		return RedirectResult{}, fmt.Errorf("callback listener: %w", serr)
	case <-time.After(timeout):
		shutdown()
		return RedirectResult{}, ErrRedirectTimeout
	case <-ctx.Done():
		shutdown()
		return RedirectResult{}, ctx.Err()
	}
}

// redirectHandler serves the OAuth redirect pages and forwards the first
// parsed result. A duplicate redirect (the user refreshing the callback page)
// still gets its page served but is otherwise dropped, so its handler never
// blocks on the full result channel.
func redirectHandler(results chan<- RedirectResult) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		res := ParseRedirect(r.URL)
		if res.Auth == "" && res.Code == "" {
			// Favicon probes and the like
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if res.Auth == "error" {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(errorPage))
		} else {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(successPage))
		}
		select {
		case results <- res:
		default:
		}
	})
}
