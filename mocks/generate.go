package mocks

//go:generate mockgen -destination=./mock_provider.go -package=mocks dipbacktest/internal/engine PriceSeriesProvider
//go:generate mockgen -destination=./mock_reporter.go -package=mocks dipbacktest/internal/engine ResultReporter
//go:generate mockgen -destination=./mock_store.go -package=mocks dipbacktest/internal/engine ResultStore
