package fetch

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// ErrNoContent is returned when a page yields no usable text.
var ErrNoContent = errors.New("no job description text found")

// JobText fetches a job posting URL and returns its description text. Platform
// selectors are tried first; when the static page is too thin and
// opts.UseBrowser is set, the page is rendered in headless Chrome.
func JobText(ctx context.Context, urlStr string, opts *Options) (string, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	log := opts.logger().With(zap.String("url", urlStr))

	platform := DetectPlatform(urlStr)
	content := PlatformContentSelectors(platform)
	noise := PlatformNoiseSelectors(platform)

	res, err := URL(ctx, urlStr, opts)
	if err != nil {
		var blocked *BlockedError
		if errors.As(err, &blocked) || !opts.UseBrowser {
			return "", err
		}
		log.Warn("static fetch failed, trying browser", zap.Error(err))
	}

	var text string
	if res != nil && err == nil {
		text, err = ExtractMainText(res.HTML, content, noise...)
		if err != nil {
			return "", &Error{URL: urlStr, Message: "failed to extract text", Cause: err}
		}
	}

	if opts.UseBrowser && ShouldUseBrowser(text) {
		log.Info("page looks client-rendered, using browser",
			zap.String("platform", string(platform)),
			zap.Int("static_chars", len(text)))
		html, bErr := WithBrowser(ctx, urlStr, browserTimeout(opts), log)
		if bErr != nil {
			if text == "" {
				return "", &Error{URL: urlStr, Message: "browser fallback failed", Cause: bErr}
			}
			log.Warn("browser fallback failed, keeping static text", zap.Error(bErr))
		} else if reason, blocked := detectBlock(200, nil, html); blocked {
			return "", &BlockedError{URL: urlStr, StatusCode: 200, Reason: reason}
		} else if rendered, xErr := ExtractMainText(html, content, noise...); xErr == nil && len(rendered) > len(text) {
			text = rendered
		}
	}

	if text == "" {
		return "", &Error{URL: urlStr, Message: "extraction failed", Cause: ErrNoContent}
	}
	return text, nil
}

func browserTimeout(opts *Options) time.Duration {
	if opts.Timeout > 0 {
		return opts.Timeout
	}
	return DefaultTimeout
}
