package utils

import (
	"fmt"
	"log"
	mathRand "math/rand"
	"strings"
	"time"
	"unsafe"

	"github.com/gofiber/fiber/v2"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/spf13/viper"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

var IsTestMode bool = false
var zapLogger *zap.Logger

const letterBytes = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
const (
	letterIdxBits = 6                    // 6 bits to represent a letter index
	letterIdxMask = 1<<letterIdxBits - 1 // All 1-bits, as many as letterIdxBits
	letterIdxMax  = 63 / letterIdxBits   // # of letter indices fitting in 63 bits
)

// Define the LogLevel type as a string
type LogLevel string

const (
	INFO     LogLevel = "INFO"
	DEBUG    LogLevel = "DEBUG"
	ERROR    LogLevel = "ERROR"
	CRITICAL LogLevel = "CRITICAL"
)

type Logger struct {
	LogLevel    LogLevel
	Message     string
	ServiceName string
}

func RandString(n int) string {
	var src = mathRand.NewSource(time.Now().UnixNano())
	b := make([]byte, n)
	// A src.Int63() generates 63 random bits, enough for letterIdxMax characters!
	for i, cache, remain := n-1, src.Int63(), letterIdxMax; i >= 0; {
		if remain == 0 {
			cache, remain = src.Int63(), letterIdxMax
		}
		if idx := int(cache & letterIdxMask); idx < len(letterBytes) {
			b[i] = letterBytes[idx]
			i--
		}
		cache >>= letterIdxBits
		remain--
	}

	return *(*string)(unsafe.Pointer(&b))
}

// preventing application from crashing abruptly. use defer PanicRecover() on top of the codes that may cause panic
func PanicRecover() {
	if r := recover(); r != nil {
		log.Println("Recovered from panic: ", r)
	}
}

func InitializeViper(configName string, configType string) {
	viper.SetConfigName(configName)
	if IsTestMode {
		fmt.Println("Running in Test mode...")
		viper.AddConfigPath("../") // Adjust the path for test environment
		viper.AddConfigPath(".")
	} else {
		// Normal mode configuration
		viper.AddConfigPath("/app") // Adjust the path for production environment
		viper.AddConfigPath(".")
	}
	viper.AutomaticEnv()
	viper.SetConfigType(configType)
	// Map the environment variable POSTGRES_DB_PASSWORD to the config path postgres_db.password
	viper.BindEnv("postgres_db.password", "POSTGRES_DB_PASSWORD")
	if viper.AllKeys() == nil {
		if err := viper.ReadInConfig(); err != nil {
			log.Fatal("Error reading config file, ", err)
		}
	} else {
		if err := viper.MergeInConfig(); err != nil {
			log.Fatalf("Error reading config file 2, %s", err)
		}
	}
}

func LogMessage(logLevel string, message string, service string, forcedTraceId ...string) string {
	if zapLogger == nil {
		mode := strings.ToLower(viper.GetString("mode"))
		var err error
		if IsTestMode || mode == "development" {
			zapLogger, err = zap.NewDevelopment()
		} else {
			zapLogger, err = zap.NewProduction()
		}
		if err != nil {
			log.Printf("zap init failed: %v", err)
			zapLogger = zap.NewNop()
		}
	}
	traceId := RandString(12)
	if forcedTraceId != nil && forcedTraceId[0] != "" {
		traceId = forcedTraceId[0]
	}
	fields := []zap.Field{
		zap.String("service", service),
		zap.String("traceId", traceId),
	}
	switch strings.ToLower(logLevel) {
	case "critical", "fatal", "panic":
		zapLogger.Error(message, fields...)
	case "error":
		zapLogger.Error(message, fields...)
	case "warn", "warning":
		zapLogger.Warn(message, fields...)
	case "info":
		zapLogger.Info(message, fields...)
	case "debug":
		zapLogger.Debug(message, fields...)
	default:
		zapLogger.Info(message, fields...)
	}
	return traceId
}

// USSDResponse writes one menu reply the way the telecom provider consumes
// it: a plain-text body whose first token (CON/END) is the continuation
// directive.
func USSDResponse(c *fiber.Ctx, message string) error {
	c.Set("Content-Type", "text/plain")
	c.Set("Cache-Control", "max-age=0")
	c.Set("Pragma", "no-cache")
	return c.Status(fiber.StatusOK).SendString(message)
}

func Localize(localizer *i18n.Localizer, messageID string, templateData map[string]interface{}) string {
	msg, err := localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    messageID,
		TemplateData: templateData,
	})
	if err != nil {
		LogMessage("error", "Localize: "+err.Error(), "q4icoms-gateway")
		return messageID
	}
	return msg
}

// check if item Exist in string slice
func ContainsString(slice []string, value string) bool {
	for _, v := range slice {
		if v == value {
			return true
		}
	}
	return false
}

// return json response and save logs if logger contains 1 or more entries
func JsonErrorResponse(c *fiber.Ctx, responseStatus int, message string, logger ...Logger) error {
	traceId := ""
	//save logs if it is available
	for _, entry := range logger {
		logId := ""
		if !IsTestMode {
			logId = LogMessage(string(entry.LogLevel), entry.Message, entry.ServiceName, traceId)
		} else {
			fmt.Println(entry.Message)
		}
		//update traceId once it is empty only, then other logs will use that traceId
		if traceId == "" {
			traceId = logId
		}
	}
	publicMessage := message
	//never show actual system error to a caller
	if responseStatus >= 500 {
		publicMessage = "An internal server error occurred."
		if traceId != "" {
			publicMessage = fmt.Sprintf("%s Trace_id: %s", publicMessage, traceId)
		}
	}
	return c.Status(responseStatus).JSON(fiber.Map{"error": publicMessage})
}

// ExportToExcel renders a header row plus data rows into a single-sheet
// workbook and returns the file bytes.
func ExportToExcel(sheetName string, headers []string, rows [][]interface{}) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")
	for i, header := range headers {
		colName, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetCellValue(sheetName, colName+"1", header); err != nil {
			return nil, err
		}
	}
	for rowIndex, row := range rows {
		for colIndex, value := range row {
			colName, _ := excelize.ColumnNumberToName(colIndex + 1)
			cell := fmt.Sprintf("%s%d", colName, rowIndex+2)
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				return nil, err
			}
		}
	}
	buffer, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}
