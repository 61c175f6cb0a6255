package routes

import (
	"fmt"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"staycation/config"
	"staycation/services"
	"staycation/services/mail"
)

// Dependencies are the connections the API is built from. Mailer, Google and Geocoder
// default to the configured implementations when nil.
type Dependencies struct {
	DB         *gorm.DB
	Redis      *redis.Client
	Cloudinary *cloudinary.Cloudinary
	Config     *config.Config
	Log        *zap.Logger

	Mailer   mail.Mailer
	Google   services.GoogleVerifier
	Geocoder services.Geocoder
	Uploader services.ImageUploader
}

type Services struct {
	Tokens     *services.TokenService
	Auth       *services.AuthService
	Users      *services.UserService
	Properties *services.PropertyService
	Rooms      *services.RoomService
	PriceRules *services.PriceRuleService
	Holidays   *services.HolidayService
	Bookings   *services.BookingService
	Tenants    *services.TenantService
	Reviews    *services.ReviewService
	Cron       *services.CronService
	Storage    *services.LocalStorage
	Uploader   services.ImageUploader
}

func NewServices(deps Dependencies) (*Services, error) {
	cfg, log := deps.Config, deps.Log

	mailer := deps.Mailer
	if mailer == nil {
		var err error
		if mailer, err = mail.NewMailer(cfg.Mail, log); err != nil {
			return nil, err
		}
	}
	notifier, err := mail.NewNotifier(mailer, cfg.Server.BaseURL, log)
	if err != nil {
		return nil, fmt.Errorf("load mail templates: %w", err)
	}

	google := deps.Google
	if google == nil && cfg.Google.ClientID != "" {
		google = services.NewIDTokenVerifier(cfg.Google.ClientID)
	}
	geocoder := deps.Geocoder
	if geocoder == nil && cfg.Mapbox.AccessToken != "" {
		geocoder = services.NewMapboxGeocoder(cfg.Mapbox.AccessToken)
	}
	uploader := deps.Uploader
	if uploader == nil {
		uploader = services.NewCloudinaryUploader(deps.Cloudinary)
	}

	cache := services.NewCache(deps.Redis, log)
	tokens := services.NewTokenService(cfg.JWT.Secret, cfg.JWT.ExpiresIn)
	storage := services.NewLocalStorage(cfg.Upload.Dir, cfg.Upload.MaxBytes)
	bookings := services.NewBookingService(deps.DB, notifier, storage, cfg.Booking, log)

	return &Services{
		Tokens:     tokens,
		Auth:       services.NewAuthService(deps.DB, tokens, notifier, google, cfg.Booking, log),
		Users:      services.NewUserService(deps.DB, uploader, log),
		Properties: services.NewPropertyService(deps.DB, cache, geocoder, uploader, log),
		Rooms:      services.NewRoomService(deps.DB, cache, uploader, log),
		PriceRules: services.NewPriceRuleService(deps.DB, cache),
		Holidays:   services.NewHolidayService(deps.DB),
		Bookings:   bookings,
		Tenants:    services.NewTenantService(deps.DB, cache, bookings, log),
		Reviews:    services.NewReviewService(deps.DB, cache),
		Cron:       services.NewCronService(deps.DB, bookings, notifier, log),
		Storage:    storage,
		Uploader:   uploader,
	}, nil
}
