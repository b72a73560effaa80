package dig_container

import (
	"context"
	"fmt"
	"log"
	"os"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/campusmove/movplan/apps/api/echo"
	"github.com/campusmove/movplan/core"
	"github.com/campusmove/movplan/core/movement"
	"github.com/campusmove/movplan/core/planner"
	emailsvc "github.com/campusmove/movplan/services/email"
	logsvc "github.com/campusmove/movplan/services/logger"
	"github.com/campusmove/movplan/storage"
)

type StorageLoggerParam struct {
	dig.In
	Logger core.Logger `name:"storageLogger"`
}

func newLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "API : ", log.LstdFlags)
	return logsvc.NewRollbarLogger(stdLogger, conf)
}

func newStorageLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	return logsvc.NewRollbarLogger(stdLogger, conf)
}

func newRepositories(conf *core.Config, loggerParam StorageLoggerParam) *storage.Repositories {
	repos, err := storage.Open(context.Background(), conf)
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("setting up storage: %v", err), err)
	}
	return repos
}

func newValidator() (*validator.Validate, ut.Translator) {
	validate, translator := core.NewValidator()
	movement.InitValidators(validate, translator)
	return validate, translator
}

func newServices(repos *storage.Repositories, validate *validator.Validate) planner.Services {
	return repos.Services(validate)
}

func newEmailService(conf *core.Config, logger core.Logger) core.EmailService {
	if conf.Debug || conf.SendgridApiKey == "" {
		return emailsvc.NewConsoleService(conf, logger)
	}
	return emailsvc.NewSendgridService(conf, logger)
}

func newPlanner(
	conf *core.Config,
	stores planner.Stores,
	validate *validator.Validate,
	logger core.Logger,
	mailSvc core.EmailService,
) *planner.Planner {
	return planner.New(stores, validate, logger, mailSvc, planner.Options{
		BlockOverbooked: conf.Planner.BlockOverbooked,
	})
}

func newServer(
	conf *core.Config,
	logger core.Logger,
	translator ut.Translator,
	p *planner.Planner,
	svcs planner.Services,
) *echoapi.Server {
	return echoapi.NewServer(&echoapi.Deps{
		Conf:       conf,
		Logger:     logger,
		Translator: translator,
		Planner:    p,
		Services:   svcs,
	})
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newStorageLogger, dig.Name("storageLogger")))
	must(c.Provide(newRepositories))
	must(c.Provide(newValidator))
	must(c.Provide(newServices))
	must(c.Provide(planner.NewStores))
	must(c.Provide(newEmailService))
	must(c.Provide(newPlanner))
	must(c.Provide(newServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
