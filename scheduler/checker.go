// Package scheduler runs the periodic alert cycle over every user.
package scheduler

import (
	"fmt"
	"log"
	"time"

	"pricewatch/repository"
	"pricewatch/tracker"

	"github.com/robfig/cron/v3"
)

type PriceChecker struct {
	cron     *cron.Cron
	userRepo *repository.UserRepository
	engine   *tracker.Engine
	interval time.Duration
}

func NewPriceChecker(engine *tracker.Engine, userRepo *repository.UserRepository, interval time.Duration) *PriceChecker {
	return &PriceChecker{
		cron:     cron.New(),
		userRepo: userRepo,
		engine:   engine,
		interval: interval,
	}
}

// Start schedules the alert cycle and fires one immediately.
func (pc *PriceChecker) Start() {
	spec := fmt.Sprintf("@every %s", pc.interval)
	_, err := pc.cron.AddFunc(spec, pc.checkAllUsers)
	if err != nil {
		log.Printf("Failed to schedule price checker: %v", err)
		return
	}

	// Also run immediately on startup
	go pc.checkAllUsers()

	pc.cron.Start()
	log.Printf("Price checker scheduled to run every %s", pc.interval)
}

// Stop stops the scheduled price checking
func (pc *PriceChecker) Stop() {
	if pc.cron != nil {
		pc.cron.Stop()
	}
}

// checkAllUsers runs one alert cycle for every registered user.
func (pc *PriceChecker) checkAllUsers() {
	log.Println("Starting scheduled price check for all users")

	users, err := pc.userRepo.GetUsers()
	if err != nil {
		log.Printf("Failed to get users: %v", err)
		return
	}

	if len(users) == 0 {
		log.Println("No users to check")
		return
	}

	for _, user := range users {
		alerted, err := pc.engine.CheckAndAlert(user.ID)
		if err != nil {
			log.Printf("Alert cycle failed for user %d: %v", user.ID, err)
			continue
		}
		for _, alert := range alerted {
			log.Printf("Alert for user %d: %s dropped to %.2f (threshold %.2f)",
				user.ID, alert.Title, alert.Price, alert.Threshold)
		}
	}
}

// ManualCheck allows manual triggering of price checks
func (pc *PriceChecker) ManualCheck() {
	log.Println("Manual price check triggered")
	pc.checkAllUsers()
}
