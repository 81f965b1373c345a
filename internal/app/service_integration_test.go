package service_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	service "github.com/okian/waitcast/internal/app"
	"github.com/okian/waitcast/internal/domain/predictor"
	"github.com/okian/waitcast/pkg/logger"
)

// leafModel is an XGBoost JSON model with a single constant tree.
const leafModel = `{
  "learner": {
    "feature_names": [FEATURES],
    "gradient_booster": {"name": "gbtree", "model": {"trees": [{
      "left_children": [-1], "right_children": [-1], "split_indices": [0],
      "split_conditions": [LEAF], "default_left": [0]
    }]}},
    "learner_model_param": {"base_score": "[0E0]"},
    "objective": {"name": "reg:squarederror"}
  }
}`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func modelFile(t *testing.T, dir, name, features, leaf string) string {
	t.Helper()
	content := strings.NewReplacer("FEATURES", features, "LEAF", leaf).Replace(leafModel)
	return writeFile(t, dir, name, content)
}

func TestService_StartFromArtifacts(t *testing.T) {
	Convey("Given model and schema artifacts on disk", t, func() {
		dir := t.TempDir()
		ctx := context.Background()
		receptionCols := `"hour", "total_outpatient_count", "lag_30min"`
		combinedCols := `"hour", "reception_count", "queue_at_start_of_slot"`

		receptionSchema := writeFile(t, dir, "columns_reception.json", "["+receptionCols+"]")
		combinedSchema := writeFile(t, dir, "columns_multi.json", "["+combinedCols+"]")
		receptionModel := modelFile(t, dir, "reception.json", receptionCols, "42.4")
		queueModel := modelFile(t, dir, "queue.json", combinedCols, "17.5")
		waitModel := modelFile(t, dir, "wait.json", combinedCols, "-3")
		holidays := writeFile(t, dir, "holidays.yaml", "holidays:\n  - date: \"2026-10-20\"\n    name: \"開院記念日\"\n")

		newSvc := func(opts ...service.Option) *service.Service {
			base := []service.Option{
				service.WithSchemaPaths(receptionSchema, combinedSchema),
				service.WithModelPaths(receptionModel, queueModel, waitModel),
				service.WithHolidaysFile(holidays),
				service.WithLocation(time.UTC),
				service.WithLogger(logger.Nop()),
			}
			return service.New(append(base, opts...)...)
		}

		Convey("When the service starts", func() {
			svc := newSvc()
			So(svc.Start(ctx), ShouldBeNil)
			defer svc.Stop()

			report, err := svc.Forecast(ctx, service.Request{Date: "2026-10-20", TotalPatients: 1000, Weather: "薄曇"})

			Convey("Then the loaded models drive the forecast", func() {
				So(err, ShouldBeNil)
				So(report.Holiday, ShouldBeTrue)
				So(report.Slots, ShouldHaveLength, 21)
				So(report.Slots[0].Reception, ShouldEqual, 42)
				So(report.Slots[0].Queue, ShouldEqual, 18)
				So(report.Slots[0].WaitMinutes, ShouldEqual, 0)
				So(svc.GetStats()["siteHolidays"], ShouldEqual, 1)
			})

			Convey("Then national holidays still apply next to the site list", func() {
				national, err := svc.Forecast(ctx, service.Request{Date: "2028-02-11", TotalPatients: 1000, Weather: "晴"})
				So(err, ShouldBeNil)
				So(national.Holiday, ShouldBeTrue)

				after, err := svc.Forecast(ctx, service.Request{Date: "2026-10-21", TotalPatients: 1000, Weather: "晴"})
				So(err, ShouldBeNil)
				So(after.Holiday, ShouldBeFalse)
				So(after.PrevDayHoliday, ShouldBeTrue)
			})
		})

		Convey("When a model disagrees with its schema", func() {
			bad := modelFile(t, dir, "bad.json", `"hour", "minute"`, "1")
			svc := newSvc(service.WithModelPaths(receptionModel, bad, waitModel))
			err := svc.Start(ctx)

			Convey("Then startup fails with a feature mismatch", func() {
				So(errors.Is(err, service.ErrStartup), ShouldBeTrue)
				So(errors.Is(err, predictor.ErrFeatureMismatch), ShouldBeTrue)
			})
		})

		Convey("When a schema file is missing", func() {
			svc := newSvc(service.WithSchemaPaths(filepath.Join(dir, "missing.json"), combinedSchema))
			err := svc.Start(ctx)

			Convey("Then startup fails", func() {
				So(errors.Is(err, service.ErrStartup), ShouldBeTrue)
			})
		})

		Convey("When the holiday file is malformed", func() {
			broken := writeFile(t, dir, "broken.yaml", "holidays:\n  - date: \"not-a-date\"\n")
			svc := newSvc(service.WithHolidaysFile(broken))
			err := svc.Start(ctx)

			Convey("Then startup fails", func() {
				So(errors.Is(err, service.ErrStartup), ShouldBeTrue)
			})
		})
	})
}
