package handlers

import (
	"encoding/csv"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/go-chi/chi/v5"
	"github.com/propertyplus/propertyplus/internal/auth"
	internalctx "github.com/propertyplus/propertyplus/internal/context"
	"github.com/propertyplus/propertyplus/internal/db"
	"github.com/propertyplus/propertyplus/internal/mapping"
	"github.com/propertyplus/propertyplus/internal/types"
	"go.uber.org/zap"
)

const securityEventExportLimit = 5000

func SecurityEventsRouter(r chi.Router) {
	r.Get("/", getSecurityEventsHandler())
	r.Get("/export", exportSecurityEventsHandler())
}

func parseSecurityEventFilters(r *http.Request, subject string) (types.SecurityEventFilter, error) {
	filter := types.SecurityEventFilter{
		Subject: subject,
		Before:  time.Now(),
		Count:   50,
	}

	if before, err := QueryParam(r, "before", ParseTimeFunc(time.RFC3339Nano)); errors.Is(err, ErrParamNotDefined) {
		// use default
	} else if err != nil {
		return filter, fmt.Errorf("before must be a valid date")
	} else {
		filter.Before = before
	}

	if after, err := QueryParam(r, "after", ParseTimeFunc(time.RFC3339Nano)); errors.Is(err, ErrParamNotDefined) {
		// use default
	} else if err != nil {
		return filter, fmt.Errorf("after must be a valid date")
	} else {
		filter.After = after
	}

	if count, err := QueryParam(r, "count", strconv.Atoi); errors.Is(err, ErrParamNotDefined) {
		// use default
	} else if err != nil {
		return filter, fmt.Errorf("count must be a number")
	} else {
		filter.Count = count
	}

	if kind, err := QueryParam(r, "kind", parseString); errors.Is(err, ErrParamNotDefined) {
		// use default
	} else if err != nil {
		return filter, err
	} else {
		eventKind := types.SecurityEventKind(kind)
		filter.Kind = &eventKind
	}

	return filter, nil
}

func parseString(s string) (string, error) {
	return s, nil
}

func getSecurityEventsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		log := internalctx.GetLogger(ctx)
		authInfo := auth.Authentication.Require(ctx)

		filter, err := parseSecurityEventFilters(r, authInfo.CurrentUserEmail())
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		events, err := db.GetSecurityEvents(ctx, filter)
		if err != nil {
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			sentry.GetHubFromContext(ctx).CaptureException(err)
			log.Warn("could not get security events", zap.Error(err))
			return
		}

		RespondJSON(w, mapping.List(events, mapping.SecurityEventToAPI))
	}
}

func exportSecurityEventsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		log := internalctx.GetLogger(ctx)
		authInfo := auth.Authentication.Require(ctx)

		filename := fmt.Sprintf("%s_security_events.csv", time.Now().Format("2006-01-02"))
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))

		csvWriter := csv.NewWriter(w)
		_ = csvWriter.Write([]string{"Date", "Event", "Purpose", "Address", "Detail"})

		err := db.GetSecurityEventsForExport(ctx, authInfo.CurrentUserEmail(), securityEventExportLimit,
			func(event types.SecurityEvent) error {
				apiEvent := mapping.SecurityEventToAPI(event)
				return csvWriter.Write([]string{
					apiEvent.CreatedAt.Format(time.RFC3339),
					apiEvent.Kind,
					ptrOrEmpty(apiEvent.Purpose),
					ptrOrEmpty(apiEvent.IPAddress),
					ptrOrEmpty(apiEvent.Detail),
				})
			})
		if err != nil {
			// headers are already on the wire, the download just comes up short
			sentry.GetHubFromContext(ctx).CaptureException(err)
			log.Warn("could not export security events", zap.Error(err))
			return
		}

		csvWriter.Flush()
	}
}

func ptrOrEmpty(s *string) string {
	if s != nil {
		return *s
	}
	return ""
}
