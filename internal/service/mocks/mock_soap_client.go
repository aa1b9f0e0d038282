package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/libreclinica/api-gateway/internal/models"
	client "github.com/libreclinica/api-gateway/internal/soap-client"
)

// MockSOAPClient is a mock implementation of service.SOAPClient
type MockSOAPClient struct {
	mock.Mock
}

func (m *MockSOAPClient) ListStudies(ctx context.Context, userID int64, username string) (*client.ListStudiesResult, error) {
	args := m.Called(ctx, userID, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*client.ListStudiesResult), args.Error(1)
}

func (m *MockSOAPClient) GetStudyMetadata(ctx context.Context, oid string, userID int64, username string) (*client.StudyMetadataResult, error) {
	args := m.Called(ctx, oid, userID, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*client.StudyMetadataResult), args.Error(1)
}

func (m *MockSOAPClient) RecordAuditEvent(ctx context.Context, record *models.AuditEventRecord) (*client.AuditEventResult, error) {
	args := m.Called(ctx, record)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*client.AuditEventResult), args.Error(1)
}

func (m *MockSOAPClient) RecordElectronicSignature(ctx context.Context, entityType string, entityID int64, signature *models.SignatureRequest, userID int64, username string) (*client.SignatureCallResult, error) {
	args := m.Called(ctx, entityType, entityID, signature, userID, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*client.SignatureCallResult), args.Error(1)
}

func (m *MockSOAPClient) GetSubjectAuditTrail(ctx context.Context, studyID, subjectID, userID int64, username string) (*client.AuditTrailResult, error) {
	args := m.Called(ctx, studyID, subjectID, userID, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*client.AuditTrailResult), args.Error(1)
}

func (m *MockSOAPClient) GetFormAuditTrail(ctx context.Context, eventCRFID, userID int64, username string) (*client.AuditTrailResult, error) {
	args := m.Called(ctx, eventCRFID, userID, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*client.AuditTrailResult), args.Error(1)
}
