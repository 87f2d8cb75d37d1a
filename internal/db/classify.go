package db

import (
	"context"
	"errors"
	"net"

	"github.com/jackc/pgx/v5/pgconn"
)

// Condition class names by the first two characters of SQLSTATE.
// See: https://www.postgresql.org/docs/current/errcodes-appendix.html
var sqlStateClasses = map[string]string{
	"01": "Warning",
	"02": "NoData",
	"03": "SQLStatementNotYetComplete",
	"08": "ConnectionException",
	"09": "TriggeredActionException",
	"0A": "FeatureNotSupported",
	"0B": "InvalidTransactionInitiation",
	"0F": "LocatorException",
	"0L": "InvalidGrantor",
	"0P": "InvalidRoleSpecification",
	"0Z": "DiagnosticsException",
	"20": "CaseNotFound",
	"21": "CardinalityViolation",
	"22": "DataException",
	"23": "IntegrityConstraintViolation",
	"24": "InvalidCursorState",
	"25": "InvalidTransactionState",
	"26": "InvalidSQLStatementName",
	"27": "TriggeredDataChangeViolation",
	"28": "InvalidAuthorizationSpecification",
	"2B": "DependentPrivilegeDescriptorsStillExist",
	"2D": "InvalidTransactionTermination",
	"2F": "SQLRoutineException",
	"34": "InvalidCursorName",
	"38": "ExternalRoutineException",
	"39": "ExternalRoutineInvocationException",
	"3B": "SavepointException",
	"3D": "InvalidCatalogName",
	"3F": "InvalidSchemaName",
	"40": "TransactionRollback",
	"42": "SyntaxErrorOrAccessRuleViolation",
	"44": "WithCheckOptionViolation",
	"53": "InsufficientResources",
	"54": "ProgramLimitExceeded",
	"55": "ObjectNotInPrerequisiteState",
	"57": "OperatorIntervention",
	"58": "SystemError",
	"72": "SnapshotTooOld",
	"F0": "ConfigFileError",
	"HV": "FDWError",
	"P0": "PLpgSQLError",
	"XX": "InternalError",
}

// ErrorCategory names the class of err for failure reports.
// Server errors are named by their SQLSTATE condition class.
func ErrorCategory(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if len(pgErr.Code) >= 2 {
			if name, ok := sqlStateClasses[pgErr.Code[:2]]; ok {
				return name
			}
		}
		return "PostgresError"
	}

	if errors.Is(err, context.Canceled) {
		return "Canceled"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "Timeout"
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return "NetworkError"
	}
	if pgconn.SafeToRetry(err) || pgconn.Timeout(err) {
		return "ConnectionException"
	}
	return "ClientError"
}

// ErrorMessage returns the server's primary message for PostgreSQL errors,
// with the detail line when there is one, and err.Error() otherwise.
func ErrorMessage(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		msg := pgErr.Message
		if pgErr.Detail != "" {
			msg += " (" + pgErr.Detail + ")"
		}
		if pgErr.Where != "" {
			msg += " [" + pgErr.Where + "]"
		}
		return msg
	}
	return err.Error()
}
