package fileutil

import (
	"crypto/md5"
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"os/user"
	"path/filepath"
	"strings"
)

// ExchangeHome returns the absolute path to the exchange root directory,
// which contains config and test files. You can set this explicitly by
// defining an environment variable called EXCHANGE_HOME. Otherwise,
// this walks up from the current working directory to the first
// directory containing a go.mod file, falling back to the working
// directory itself.
func ExchangeHome() (exchangeHome string, err error) {
	exchangeHome = os.Getenv("EXCHANGE_HOME")
	if exchangeHome != "" {
		return filepath.Abs(exchangeHome)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("Cannot determine exchange home: %v", err)
	}
	for dir := cwd; ; dir = filepath.Dir(dir) {
		if FileExists(filepath.Join(dir, "go.mod")) {
			return dir, nil
		}
		if dir == filepath.Dir(dir) {
			break
		}
	}
	return cwd, nil
}

// LoadRelativeFile reads the file at the specified path
// relative to EXCHANGE_HOME and returns the contents as a byte array.
func LoadRelativeFile(relativePath string) ([]byte, error) {
	absPath, err := RelativeToAbsPath(relativePath)
	if err != nil {
		return nil, err
	}
	return ioutil.ReadFile(absPath)
}

// Reads data from the file at absPath (an absolute path)
// and coverts it to an object of whatever type param obj
// is. Returns an error if there's a problem reading the
// file or unmarshalling the data into the type you passed in.
func JsonFileToObject(absPath string, obj interface{}) error {
	data, err := ioutil.ReadFile(absPath)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, obj)
}

// Converts a relative path within the exchange directory tree
// to an absolute path.
func RelativeToAbsPath(relativePath string) (string, error) {
	if filepath.IsAbs(relativePath) {
		return relativePath, nil
	}
	exchangeHome, err := ExchangeHome()
	if err != nil {
		return "", err
	}
	return filepath.Join(exchangeHome, relativePath), nil
}

// Returns true if the file at path exists, false if not.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	if err != nil && os.IsNotExist(err) {
		return false
	}
	return true
}

// Expands the tilde in a directory path to the current
// user's home directory. For example, on Linux, ~/data
// would expand to something like /home/josie/data
func ExpandTilde(filePath string) (string, error) {
	if !strings.HasPrefix(filePath, "~") {
		return filePath, nil
	}
	usr, err := user.Current()
	if err != nil {
		return "", err
	}
	homeDir := usr.HomeDir + "/"
	expandedDir := strings.Replace(filePath, "~/", homeDir, 1)
	return expandedDir, nil
}

// Returns true if the path specified by dir has at least minLength
// characters and at least minSeparators path separators. This is
// for testing paths you want pass into os.RemoveAll(), so you don't
// wind up deleting "/" or "/etc" or something catastrophic like that.
func LooksSafeToDelete(dir string, minLength, minSeparators int) bool {
	separator := string(os.PathSeparator)
	separatorCount := (len(dir) - len(strings.Replace(dir, separator, "", -1)))
	return len(dir) >= minLength && separatorCount >= minSeparators
}

// CalculateMd5 returns the hex-encoded md5 digest of the file
// at pathToFile, along with its size in bytes.
func CalculateMd5(pathToFile string) (digest string, size int64, err error) {
	inputFile, err := os.Open(pathToFile)
	if err != nil {
		return "", 0, err
	}
	defer inputFile.Close()
	hash := md5.New()
	size, err = io.Copy(hash, inputFile)
	if err != nil {
		return "", 0, err
	}
	return fmt.Sprintf("%x", hash.Sum(nil)), size, nil
}
