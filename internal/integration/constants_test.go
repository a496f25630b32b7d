package integration_test

import (
	"time"

	"github.com/metinatakli/showtime-booking-engine/internal/testutil"
)

const (
	dbName         = "showtime_booking"
	dbUser         = "test_user"
	dbPassword     = "test_password"
	dbImageName    = "postgres:17-alpine"
	cacheImageName = "redis:7"
)

const (
	TestRoomId = 1

	TestShowtimeId        = 1
	TestStartedShowtimeId = 2

	TestSeatA1     = 1
	TestSeatA2     = 2
	TestSeatA3     = 3
	TestSeatBroken = 4

	TestUserId      = 101
	TestOtherUserId = 202
)

var TestShowtimeStart = testutil.Now.Add(2 * time.Hour)
