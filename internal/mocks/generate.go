package mocks

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Source --dir ../domain/fixture --output domain/fixture --outpkg fixturemock --filename source_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name FormSource --dir ../domain/fixture --output domain/fixture --outpkg fixturemock --filename form_source_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Notifier --dir ../usecase --output usecase --outpkg usecasemock --filename notifier_mock.go
