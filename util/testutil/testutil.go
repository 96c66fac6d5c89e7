package testutil

import (
	"fmt"
	"github.com/icrowley/fake"
	"github.com/nsqio/go-nsq"
	"github.com/openaccess/exchange/constants"
	"github.com/openaccess/exchange/models"
	"github.com/openaccess/exchange/util/fileutil"
	"github.com/satori/go.uuid"
	"math/rand"
	"path/filepath"
	"strings"
	"time"
)

// Loads a Paper fixture (a JSON file) from the testdata
// directory for testing.
func LoadPaperFixture(filename string) (*models.Paper, error) {
	absPath, err := fileutil.RelativeToAbsPath(filename)
	if err != nil {
		return nil, err
	}
	paper := &models.Paper{}
	if err := fileutil.JsonFileToObject(absPath, paper); err != nil {
		return nil, err
	}
	return paper, nil
}

// Loads a DepositRequest fixture from the testdata directory.
func LoadDepositRequestFixture(filename string) (*models.DepositRequest, error) {
	data, err := fileutil.LoadRelativeFile(filename)
	if err != nil {
		return nil, err
	}
	return models.DepositRequestFromJson(data)
}

// MakePaper returns a paper with random metadata, the specified
// number of authors and bibliographic records. The first record
// has a DOI.
func MakePaper(authorCount, recordCount int) *models.Paper {
	paper := &models.Paper{
		Id:       rand.Intn(50000) + 1,
		Title:    fake.Sentence(),
		Abstract: fmt.Sprintf("<p>%s</p>", fake.Paragraph()),
		Authors:  make([]models.Author, authorCount),
		Records:  make([]*models.OaiRecord, recordCount),
		PubDate:  RandomDateTime().Format("2006-01-02"),
	}
	for i := 0; i < authorCount; i++ {
		paper.Authors[i] = MakeAuthor()
	}
	for i := 0; i < recordCount; i++ {
		paper.Records[i] = MakeOaiRecord()
	}
	if recordCount > 0 {
		paper.Records[0].DOI = fmt.Sprintf("10.%d/%s", rand.Intn(9000)+1000, fake.Word())
	}
	return paper
}

func MakeAuthor() models.Author {
	return models.Author{
		Name: models.Name{
			First: fake.FirstName(),
			Last:  fake.LastName(),
		},
	}
}

func MakeOaiRecord() *models.OaiRecord {
	domain := fake.DomainName()
	return &models.OaiRecord{
		Identifier: fmt.Sprintf("oai:%s:%d", domain, rand.Intn(50000)+1),
		Source:     domain,
		SplashURL:  fmt.Sprintf("https://%s/%s", domain, fake.Word()),
	}
}

func MakeUser() *models.User {
	return &models.User{
		Id:        rand.Intn(50000) + 1,
		Username:  fake.UserName(),
		FirstName: fake.FirstName(),
		LastName:  fake.LastName(),
		Email:     fake.EmailAddress(),
	}
}

// MakeRepository returns an OSF repository pointing at endpoint,
// with a token and two licenses, the first of which is the
// sandbox's "no license" license.
func MakeRepository(endpoint string) *models.Repository {
	return &models.Repository{
		Id:        rand.Intn(500) + 1,
		Name:      fmt.Sprintf("OSF %s", fake.Word()),
		Protocol:  constants.ProtocolOSF,
		Endpoint:  endpoint,
		APIKey:    uuid.NewV4().String(),
		OaiSource: "osf",
		Licenses: []models.License{
			{Id: constants.OSFSandboxNoLicenseID, Name: "No license"},
			{Id: "563c1cf88c5e4a3877f9e96a", Name: "CC-By Attribution 4.0 International"},
		},
	}
}

func MakeDepositRequest(repositoryId int) *models.DepositRequest {
	request := models.NewDepositRequest(MakePaper(2, 1), MakeUser(), repositoryId, "/tmp/article.pdf")
	request.Form["abstract"] = fake.Paragraph()
	request.Form["tags"] = strings.Join(strings.Fields(fake.WordsN(3)), ", ")
	request.Form["license"] = constants.OSFSandboxNoLicenseID
	return request
}

func MakeDepositRecord(status string) *models.DepositRecord {
	result := &models.DepositResult{
		Identifier: fake.Word(),
		Status:     status,
		Message:    fake.Sentence(),
		Logs:       fake.Paragraph(),
	}
	result.SplashURL = constants.OSFSandboxPublicURL + result.Identifier
	result.PDFURL = result.SplashURL + "/download"
	request := MakeDepositRequest(rand.Intn(500) + 1)
	result.OaiRecord = &models.OaiRecord{
		Identifier: models.DepositionIdentifier(request.RepositoryId, result.Identifier),
		SplashURL:  result.SplashURL,
		PDFURL:     result.PDFURL,
	}
	return models.NewDepositRecord(request, constants.ProtocolOSF, result)
}

// Creates an NSQ Message with the specified body.
func MakeNsqMessage(body string) *nsq.Message {
	messageId := [nsq.MsgIDLength]byte{'0', '1', '2', '3', '4', '5', '6', '7', '8', '9', 'A', 'B', 'C', 'D', 'E', 'F'}
	message := nsq.NewMessage(messageId, []byte(body))
	message.Attempts = 1
	return message
}

func RandomDateTime() time.Time {
	t := time.Now().UTC()
	minutes := rand.Intn(500000) * -1
	return t.Add(time.Duration(minutes) * time.Minute)
}

// LoadTestConfig loads config/test.json and points its log,
// staging, stats and database paths into dir, so tests running
// in parallel packages don't share files.
func LoadTestConfig(dir string) (*models.Config, error) {
	config, err := models.LoadConfigFile(filepath.Join("config", "test.json"))
	if err != nil {
		return nil, err
	}
	config.LogDirectory = filepath.Join(dir, "logs")
	config.PDFDirectory = filepath.Join(dir, "pdf")
	config.StatsDirectory = filepath.Join(dir, "stats")
	config.DepositDBFile = filepath.Join(dir, "deposits.db")
	config.LogToStderr = false
	return config, nil
}
