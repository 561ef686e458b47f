package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/okian/fishery/internal/adapters/http/api"
	"github.com/okian/fishery/internal/adapters/repository"
	service "github.com/okian/fishery/internal/app"
	"github.com/okian/fishery/internal/domain/model"
	"github.com/okian/fishery/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// mockDependencies returns canned errors or panics per operation.
type mockDependencies struct {
	listErr   error
	createErr error
	updateErr error
	deleteErr error
	pingErr   error
	panicWith any

	created []model.FishRecord
	updated []model.FishRecord
	deleted []int64
}

func (m *mockDependencies) List(context.Context) ([]model.FishRecord, error) {
	if m.panicWith != nil {
		panic(m.panicWith)
	}
	if m.listErr != nil {
		return nil, m.listErr
	}
	return nil, nil
}

func (m *mockDependencies) Create(_ context.Context, rec model.FishRecord) error {
	if m.panicWith != nil {
		panic(m.panicWith)
	}
	m.created = append(m.created, rec)
	return m.createErr
}

func (m *mockDependencies) Update(_ context.Context, rec model.FishRecord) error {
	m.updated = append(m.updated, rec)
	return m.updateErr
}

func (m *mockDependencies) Delete(_ context.Context, id int64) error {
	m.deleted = append(m.deleted, id)
	return m.deleteErr
}

func (m *mockDependencies) Ping(context.Context) error { return m.pingErr }
func (m *mockDependencies) VerboseLogging() bool        { return true }

type mockStatsProvider struct {
	stats map[string]interface{}
}

func (m *mockStatsProvider) GetStats() map[string]interface{} {
	return m.stats
}

// newMux mounts the API over a started service backed by a memory store.
func newMux(verbose bool) (*http.ServeMux, *service.Service) {
	svc := service.New(
		service.WithStore(repository.NewMemoryStore()),
		service.WithVerboseLogging(verbose),
	)
	if err := svc.Start(context.Background()); err != nil {
		panic(err)
	}
	mux := http.NewServeMux()
	api.NewServer(svc, svc, "").Register(context.Background(), mux)
	return mux, svc
}

func newMockMux(deps *mockDependencies) *http.ServeMux {
	mux := http.NewServeMux()
	api.NewServer(deps, &mockStatsProvider{stats: map[string]interface{}{}}, "/fish").Register(context.Background(), mux)
	return mux
}

func do(mux http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func decodeMap(w *httptest.ResponseRecorder) map[string]interface{} {
	var out map[string]interface{}
	So(json.Unmarshal(w.Body.Bytes(), &out), ShouldBeNil)
	return out
}

func listFish(mux http.Handler) []model.FishRecord {
	w := do(mux, http.MethodGet, "/fish", "")
	So(w.Code, ShouldEqual, http.StatusOK)
	var out []model.FishRecord
	So(json.Unmarshal(w.Body.Bytes(), &out), ShouldBeNil)
	return out
}

func TestFishHandler_RoundTrip(t *testing.T) {
	Convey("Given the fish endpoint over an empty store", t, func() {
		mux, svc := newMux(true)
		defer svc.Stop()

		Convey("When listing", func() {
			w := do(mux, http.MethodGet, "/fish", "")

			Convey("Then an empty JSON array should be returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldEqual, "application/json")
				So(strings.TrimSpace(w.Body.String()), ShouldEqual, "[]")
			})
		})

		Convey("When creating, updating and deleting the Coelacanth", func() {
			w := do(mux, http.MethodPost, "/fish", `{"Name":"Coelacanth","Sell":15000,"Shadow":"huge","Where":"sea (raining)"}`)
			So(w.Code, ShouldEqual, http.StatusOK)
			body := decodeMap(w)
			So(body["success"], ShouldEqual, true)
			So(body["message"], ShouldEqual, "Fish added successfully!")

			list := listFish(mux)
			So(len(list), ShouldEqual, 1)
			coel := list[0]
			So(coel.ID, ShouldNotEqual, 0)
			So(coel.Name, ShouldEqual, "Coelacanth")
			So(coel.Sell, ShouldEqual, 15000)
			So(coel.Shadow, ShouldEqual, "huge")
			So(coel.Where, ShouldEqual, "sea (raining)")

			w = do(mux, http.MethodPut, "/fish", `{"Id":`+jsonInt(coel.ID)+`,"Name":"Coelacanth","Sell":12000,"Shadow":"huge","Where":"sea (raining)"}`)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(decodeMap(w)["message"], ShouldEqual, "Fish updated successfully!")

			list = listFish(mux)
			So(len(list), ShouldEqual, 1)
			So(list[0].Sell, ShouldEqual, 12000)
			So(list[0].ID, ShouldEqual, coel.ID)

			w = do(mux, http.MethodDelete, "/fish", `{"Id":`+jsonInt(coel.ID)+`}`)

			Convey("Then the record should be gone", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(decodeMap(w)["message"], ShouldEqual, "Fish deleted successfully!")
				So(listFish(mux), ShouldBeEmpty)
			})
		})

		Convey("When creating fish in shuffled order", func() {
			for _, name := range []string{"Tuna", "Arowana", "Koi", "Barred Knifejaw", "Dace"} {
				w := do(mux, http.MethodPost, "/fish", `{"Name":"`+name+`","Sell":100,"Shadow":"medium","Where":"sea"}`)
				So(w.Code, ShouldEqual, http.StatusOK)
			}

			Convey("Then the list should be ordered by name ascending", func() {
				list := listFish(mux)
				names := make([]string, 0, len(list))
				for _, rec := range list {
					names = append(names, rec.Name)
				}
				So(names, ShouldResemble, []string{"Arowana", "Barred Knifejaw", "Dace", "Koi", "Tuna"})
			})
		})

		Convey("When updating and deleting an id that does not exist", func() {
			up := do(mux, http.MethodPut, "/fish", `{"Id":9999,"Name":"Ghost","Sell":1,"Shadow":"tiny","Where":"void"}`)
			del := do(mux, http.MethodDelete, "/fish", `{"Id":9999}`)

			Convey("Then both should succeed without touching the store", func() {
				So(up.Code, ShouldEqual, http.StatusOK)
				So(del.Code, ShouldEqual, http.StatusOK)
				So(listFish(mux), ShouldBeEmpty)
			})
		})

		Convey("When a client supplies an Id on create", func() {
			w := do(mux, http.MethodPost, "/fish", `{"Id":77,"Name":"Koi","Sell":4000,"Shadow":"medium","Where":"pond"}`)

			Convey("Then the store should assign its own", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				list := listFish(mux)
				So(len(list), ShouldEqual, 1)
				So(list[0].ID, ShouldNotEqual, 77)
			})
		})
	})
}

func TestFishHandler_Validation(t *testing.T) {
	Convey("Given the fish endpoint", t, func() {
		mux, svc := newMux(false)
		defer svc.Stop()

		cases := []struct {
			name   string
			method string
			body   string
		}{
			{"create without Name", http.MethodPost, `{"Sell":15000,"Shadow":"huge","Where":"sea"}`},
			{"create with empty Shadow", http.MethodPost, `{"Name":"Koi","Sell":15000,"Shadow":"","Where":"sea"}`},
			{"create with zero Sell", http.MethodPost, `{"Name":"Koi","Sell":0,"Shadow":"huge","Where":"sea"}`},
			{"create with null Where", http.MethodPost, `{"Name":"Koi","Sell":1,"Shadow":"huge","Where":null}`},
			{"create with an empty object", http.MethodPost, `{}`},
			{"update with an empty object", http.MethodPut, `{}`},
			{"update without Id", http.MethodPut, `{"Name":"Koi","Sell":1,"Shadow":"huge","Where":"sea"}`},
			{"update with zero Sell", http.MethodPut, `{"Id":1,"Name":"Koi","Sell":0,"Shadow":"huge","Where":"sea"}`},
			{"delete without Id", http.MethodDelete, `{}`},
			{"delete with zero Id", http.MethodDelete, `{"Id":0}`},
		}

		for _, tc := range cases {
			Convey("When sending "+tc.name, func() {
				w := do(mux, tc.method, "/fish", tc.body)

				Convey("Then 400 with the required fields message should be returned", func() {
					So(w.Code, ShouldEqual, http.StatusBadRequest)
					So(w.Header().Get("Content-Type"), ShouldEqual, "application/json")
					So(decodeMap(w)["error"], ShouldEqual, "All fields are required.")
					So(listFish(mux), ShouldBeEmpty)
				})
			})
		}

		Convey("When an update is rejected", func() {
			So(do(mux, http.MethodPost, "/fish", `{"Name":"Koi","Sell":4000,"Shadow":"medium","Where":"pond"}`).Code, ShouldEqual, http.StatusOK)
			id := listFish(mux)[0].ID
			w := do(mux, http.MethodPut, "/fish", `{"Id":`+jsonInt(id)+`,"Name":"","Sell":1,"Shadow":"tiny","Where":"void"}`)

			Convey("Then the stored record should be unchanged", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				list := listFish(mux)
				So(list[0].Name, ShouldEqual, "Koi")
				So(list[0].Sell, ShouldEqual, 4000)
			})
		})
	})
}

func TestFishHandler_Errors(t *testing.T) {
	Convey("Given the fish endpoint", t, func() {
		mux, svc := newMux(false)
		defer svc.Stop()

		Convey("When using an unsupported method", func() {
			w := do(mux, http.MethodPatch, "/fish", `{}`)

			Convey("Then 405 should be returned", func() {
				So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
				So(decodeMap(w)["error"], ShouldEqual, "Method not allowed")
			})
		})

		for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete} {
			Convey("When sending malformed JSON with "+method, func() {
				w := do(mux, method, "/fish", `{"Name":`)

				Convey("Then 500 with the decoder's message should be returned", func() {
					So(w.Code, ShouldEqual, http.StatusInternalServerError)
					So(decodeMap(w)["error"], ShouldEqual, "unexpected EOF")
				})
			})
		}

		for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete} {
			Convey("When sending an empty body with "+method, func() {
				w := do(mux, method, "/fish", "")

				Convey("Then 500 should be returned instead of a validation error", func() {
					So(w.Code, ShouldEqual, http.StatusInternalServerError)
					So(decodeMap(w)["error"], ShouldEqual, "Unexpected end of JSON input")
					So(listFish(mux), ShouldBeEmpty)
				})
			})

			Convey("When sending a null body with "+method, func() {
				w := do(mux, method, "/fish", `null`)

				Convey("Then 500 should be returned", func() {
					So(w.Code, ShouldEqual, http.StatusInternalServerError)
					So(decodeMap(w)["error"], ShouldEqual, "request body must be a JSON object")
				})
			})
		}

		Convey("When a valid body is followed by garbage", func() {
			w := do(mux, http.MethodPost, "/fish", `{"Name":"Koi","Sell":4000,"Shadow":"medium","Where":"pond"} not json`)

			Convey("Then 500 should be returned and nothing stored", func() {
				So(w.Code, ShouldEqual, http.StatusInternalServerError)
				So(decodeMap(w)["error"], ShouldContainSubstring, "invalid character")
				So(listFish(mux), ShouldBeEmpty)
			})
		})

		Convey("When a valid body is followed by a second object", func() {
			w := do(mux, http.MethodPost, "/fish", `{"Name":"Koi","Sell":4000,"Shadow":"medium","Where":"pond"}{}`)

			Convey("Then 500 should be returned and nothing stored", func() {
				So(w.Code, ShouldEqual, http.StatusInternalServerError)
				So(decodeMap(w)["error"], ShouldEqual, "unexpected data after JSON body")
				So(listFish(mux), ShouldBeEmpty)
			})
		})

		Convey("When a valid body has trailing whitespace", func() {
			w := do(mux, http.MethodPost, "/fish", "{\"Name\":\"Koi\",\"Sell\":4000,\"Shadow\":\"medium\",\"Where\":\"pond\"}\n\t ")

			Convey("Then it should be accepted", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(len(listFish(mux)), ShouldEqual, 1)
			})
		})

		Convey("When Sell has a fractional part", func() {
			w := do(mux, http.MethodPost, "/fish", `{"Name":"Koi","Sell":4000.5,"Shadow":"medium","Where":"pond"}`)

			Convey("Then the whole-number price should be enforced with a 500", func() {
				So(w.Code, ShouldEqual, http.StatusInternalServerError)
				So(decodeMap(w)["error"], ShouldContainSubstring, "cannot unmarshal number 4000.5")
				So(listFish(mux), ShouldBeEmpty)
			})
		})

		Convey("When Sell is sent as a string", func() {
			w := do(mux, http.MethodPost, "/fish", `{"Name":"Koi","Sell":"4000","Shadow":"medium","Where":"pond"}`)

			Convey("Then the decode failure should surface as 500", func() {
				So(w.Code, ShouldEqual, http.StatusInternalServerError)
				So(decodeMap(w)["error"], ShouldContainSubstring, "cannot unmarshal string")
			})
		})
	})

	Convey("Given a store that fails", t, func() {
		storeErr := errors.New(`relation "public.fish" does not exist`)
		deps := &mockDependencies{listErr: storeErr, createErr: storeErr, updateErr: storeErr, deleteErr: storeErr}
		mux := newMockMux(deps)

		requests := []struct {
			method, body string
		}{
			{http.MethodGet, ""},
			{http.MethodPost, `{"Name":"Koi","Sell":4000,"Shadow":"medium","Where":"pond"}`},
			{http.MethodPut, `{"Id":1,"Name":"Koi","Sell":4000,"Shadow":"medium","Where":"pond"}`},
			{http.MethodDelete, `{"Id":1}`},
		}
		for _, rq := range requests {
			Convey("When calling "+rq.method, func() {
				w := do(mux, rq.method, "/fish", rq.body)

				Convey("Then 500 with the store's message should be returned", func() {
					So(w.Code, ShouldEqual, http.StatusInternalServerError)
					So(decodeMap(w)["error"], ShouldEqual, `relation "public.fish" does not exist`)
				})
			})
		}
	})

	Convey("Given a dependency that panics", t, func() {
		Convey("When it panics with an error", func() {
			mux := newMockMux(&mockDependencies{panicWith: errors.New("connection reset")})
			w := do(mux, http.MethodGet, "/fish", "")

			Convey("Then 500 with the error's message should be returned", func() {
				So(w.Code, ShouldEqual, http.StatusInternalServerError)
				So(decodeMap(w)["error"], ShouldEqual, "connection reset")
			})
		})

		Convey("When it panics with a non-error value", func() {
			mux := newMockMux(&mockDependencies{panicWith: "kaboom"})
			w := do(mux, http.MethodPost, "/fish", `{"Name":"Koi","Sell":4000,"Shadow":"medium","Where":"pond"}`)

			Convey("Then the unknown error message should be returned", func() {
				So(w.Code, ShouldEqual, http.StatusInternalServerError)
				So(decodeMap(w)["error"], ShouldEqual, "Unknown error")
			})
		})
	})

	Convey("Given a mocked dependency", t, func() {
		deps := &mockDependencies{}
		mux := newMockMux(deps)

		Convey("When updating with all fields", func() {
			w := do(mux, http.MethodPut, "/fish", `{"Id":5,"Name":"Koi","Sell":4000,"Shadow":"medium","Where":"pond"}`)

			Convey("Then the record should be passed through unchanged", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.updated, ShouldResemble, []model.FishRecord{{ID: 5, Name: "Koi", Sell: 4000, Shadow: "medium", Where: "pond"}})
			})
		})

		Convey("When a store returns nil rows", func() {
			w := do(mux, http.MethodGet, "/fish", "")

			Convey("Then an empty array should still be returned", func() {
				So(strings.TrimSpace(w.Body.String()), ShouldEqual, "[]")
			})
		})
	})
}

func TestServer_Routes(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		mux, svc := newMux(false)
		defer svc.Stop()

		Convey("When requesting the health endpoint", func() {
			w := do(mux, http.MethodGet, "/healthz", "")

			Convey("Then the service should report ok", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(decodeMap(w)["status"], ShouldEqual, "ok")
			})
		})

		Convey("When requesting stats after a list", func() {
			So(do(mux, http.MethodPost, "/fish", `{"Name":"Koi","Sell":4000,"Shadow":"medium","Where":"pond"}`).Code, ShouldEqual, http.StatusOK)
			listFish(mux)
			w := do(mux, http.MethodGet, "/stats", "")

			Convey("Then service stats should be returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				stats := decodeMap(w)
				So(stats["started"], ShouldEqual, true)
				So(stats["store"], ShouldEqual, "memory")
				So(stats["totalRecords"], ShouldEqual, float64(1))
				So(stats["basePath"], ShouldEqual, "/fish")
			})
		})

		Convey("When posting to stats", func() {
			w := do(mux, http.MethodPost, "/stats", "")

			Convey("Then 405 should be returned", func() {
				So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
			})
		})

		Convey("When scraping metrics", func() {
			listFish(mux)
			w := do(mux, http.MethodGet, "/metrics", "")

			Convey("Then fishery metrics should be exposed", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, "fishery_api_http_requests_total")
			})
		})

		Convey("When no request id is sent", func() {
			w := do(mux, http.MethodGet, "/fish", "")

			Convey("Then one should be generated", func() {
				So(len(w.Header().Get(api.RequestIDHeader)), ShouldEqual, 36)
			})
		})

		Convey("When a request id is sent", func() {
			req := httptest.NewRequest(http.MethodGet, "/fish", nil)
			req.Header.Set(api.RequestIDHeader, "req-123")
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then it should be echoed back", func() {
				So(w.Header().Get(api.RequestIDHeader), ShouldEqual, "req-123")
			})
		})
	})

	Convey("Given a store that cannot be pinged", t, func() {
		mux := newMockMux(&mockDependencies{pingErr: errors.New("dial tcp: connection refused")})

		Convey("When requesting the health endpoint", func() {
			w := do(mux, http.MethodGet, "/healthz", "")

			Convey("Then 503 with the cause should be returned", func() {
				So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
				body := decodeMap(w)
				So(body["status"], ShouldEqual, "unavailable")
				So(body["error"], ShouldEqual, "dial tcp: connection refused")
			})
		})
	})

	Convey("Given a custom base path", t, func() {
		mux := http.NewServeMux()
		server := api.NewServer(&mockDependencies{}, &mockStatsProvider{}, "/api/fish/")
		server.Register(context.Background(), mux)

		Convey("Then the endpoint should be mounted there", func() {
			So(server.BasePath(), ShouldEqual, "/api/fish")
			So(do(mux, http.MethodGet, "/api/fish", "").Code, ShouldEqual, http.StatusOK)
		})
	})
}

func jsonInt(v int64) string {
	b, _ := json.Marshal(v)
	return string(b)
}
