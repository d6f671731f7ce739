package providers

import (
	"fmt"

	"github.com/gookit/validate"

	"hotseatd/internal/structures"
)

type CnfValidator struct {
	conf *structures.Config
}

func NewCnfValidator(conf *structures.Config) *CnfValidator {
	return &CnfValidator{conf: conf}
}

func (cv *CnfValidator) Validate() error {
	v := validate.Struct(cv.conf)
	if !v.Validate() {
		return fmt.Errorf("invalid configuration: %s", v.Errors.One())
	}
	if cv.conf.Heatmap.ToHour != 0 && cv.conf.Heatmap.ToHour < cv.conf.Heatmap.FromHour {
		return fmt.Errorf("invalid configuration: heatmap.toHour before heatmap.fromHour")
	}
	if cv.conf.Store.Backend == "redis" && cv.conf.Store.Redis.Addr == "" {
		return fmt.Errorf("invalid configuration: store.redis.addr required for redis backend")
	}
	if cv.conf.Broker.Enabled && cv.conf.Broker.Host == "" {
		return fmt.Errorf("invalid configuration: broker.host required when broker is enabled")
	}
	return nil
}
