package app

import "time"

// clock hooks for tests

func SetNow(s *ExploreService, now func() time.Time) { s.now = now }

func SetTenantNow(s *TenantService, now func() time.Time) { s.now = now }

func SetBookingNow(s *BookingService, now func() time.Time) { s.now = now }
