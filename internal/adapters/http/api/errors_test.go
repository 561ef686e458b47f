package api

import (
	"errors"
	"fmt"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestKindErrors(t *testing.T) {
	Convey("Given a cause wrapped with a kind", t, func() {
		cause := errors.New(`duplicate key value violates unique constraint "fish_pkey"`)
		err := WrapKind("api.create_fish", ErrStore, cause)

		Convey("Then errors.Is should match both the kind and the cause", func() {
			So(errors.Is(err, ErrStore), ShouldBeTrue)
			So(errors.Is(err, cause), ShouldBeTrue)
			So(errors.Is(err, ErrDecode), ShouldBeFalse)
		})

		Convey("Then Error should carry op, kind and cause", func() {
			So(err.Error(), ShouldEqual, `api.create_fish: store failure: duplicate key value violates unique constraint "fish_pkey"`)
		})

		Convey("Then the public message should be the cause's own text", func() {
			So(publicMessage(err), ShouldEqual, cause.Error())
		})

		Convey("When wrapped again with fmt", func() {
			outer := fmt.Errorf("handling request: %w", err)

			Convey("Then the public message should still be the cause's text", func() {
				So(publicMessage(outer), ShouldEqual, cause.Error())
			})
		})
	})

	Convey("Given a kind without a cause", t, func() {
		err := WrapKind("api.fish", ErrMethodNotAllowed, nil)

		Convey("Then the kind's text should be public", func() {
			So(err.Error(), ShouldEqual, "api.fish: Method not allowed")
			So(publicMessage(err), ShouldEqual, "Method not allowed")
			So(errors.Is(err, ErrMethodNotAllowed), ShouldBeTrue)
		})
	})

	Convey("Given nested kinds", t, func() {
		err := WrapKind("api.update_fish", ErrBadRequest, ErrMissingFields)

		Convey("Then the innermost text should be public", func() {
			So(publicMessage(err), ShouldEqual, "All fields are required.")
		})
	})

	Convey("Given a plain error", t, func() {
		Convey("Then its text should be public", func() {
			So(publicMessage(errors.New("EOF")), ShouldEqual, "EOF")
		})
	})
}

func TestErrorClassification(t *testing.T) {
	Convey("Given HTTP status codes", t, func() {
		So(getErrorType(500), ShouldEqual, "server_error")
		So(getErrorType(405), ShouldEqual, "method_not_allowed")
		So(getErrorType(404), ShouldEqual, "not_found")
		So(getErrorType(400), ShouldEqual, "client_error")
		So(getErrorType(200), ShouldEqual, "unknown")
		So(getErrorSeverity(503), ShouldEqual, "high")
		So(getErrorSeverity(400), ShouldEqual, "medium")
		So(getErrorSeverity(302), ShouldEqual, "low")
	})
}
